package models

import "time"

// ProjectMaterial assigns a quantity of a stock item to a project.
// The quantity here is an independent ledger: it does not reserve or
// decrement the global stock quantity.
type ProjectMaterial struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Project     Project   `gorm:"foreignKey:ProjectID" json:"-"`
	StockItemID uint      `gorm:"index;not null" json:"stock_item_id"`
	StockItem   StockItem `gorm:"foreignKey:StockItemID" json:"stock_item"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}
