package models

import "time"

// ProjectStatus is the closed set of project states.
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not_started"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusDone       ProjectStatus = "done"
)

// Valid reports whether s is one of the defined project states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusDone:
		return true
	}
	return false
}

// Project is an irrigation job owned by exactly one client.
// Status is only mutable through the admin surface.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ClientID    uint          `gorm:"index;not null" json:"client_id"`
	Client      User          `gorm:"foreignKey:ClientID" json:"-"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// OwnerID implements policy.Ownable.
func (p *Project) OwnerID() uint {
	return p.ClientID
}
