package models

import "time"

// StockItem is a global catalog entry (pipes, sprinklers, fittings...).
// It is not owned by any client and only the admin surface mutates it.
type StockItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	Unit        string    `gorm:"size:50;default:'unidad'" json:"unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
