package models

import (
	"fmt"
	"time"
)

// InvoiceStatus represents the lifecycle state of an invoice.
// Transitions are one-directional: pending -> paid or pending -> cancelled.
// Paid and cancelled are terminal.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a billing document issued to a client, optionally tied to a
// project. Number and IssueDate are immutable once assigned; PaymentDate is
// set only on the transition to paid.
type Invoice struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ClientID    uint          `gorm:"index;not null" json:"client_id"`
	Client      User          `gorm:"foreignKey:ClientID" json:"-"`
	ProjectID   *uint         `gorm:"index" json:"project_id,omitempty"`
	Project     *Project      `gorm:"foreignKey:ProjectID" json:"-"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      InvoiceStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Number      string        `gorm:"size:50;uniqueIndex" json:"number"`
	IssueDate   time.Time     `gorm:"not null" json:"issue_date"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`
}

// OwnerID implements policy.Ownable.
func (i *Invoice) OwnerID() uint {
	return i.ClientID
}

// IsPending reports whether the invoice can still transition.
func (i *Invoice) IsPending() bool {
	return i.Status == InvoiceStatusPending
}

// DisplayNumber returns the assigned invoice number, falling back to a
// number derived from the internal id if none was ever assigned.
func (i *Invoice) DisplayNumber() string {
	if i.Number != "" {
		return i.Number
	}
	return fmt.Sprintf("FAC-%d", i.ID)
}

// FormatNumber builds an invoice number for a given year and sequence.
// Format: FAC-YYYY-NNNNN (e.g. FAC-2024-00001).
func FormatNumber(year, sequence int) string {
	return fmt.Sprintf("FAC-%d-%05d", year, sequence)
}
