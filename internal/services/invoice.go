package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/models"
)

// numberingAttempts bounds the retry loop when two concurrent creations
// compute the same sequence value and collide on the unique number index.
const numberingAttempts = 3

// InvoiceService owns invoice numbering, the state machine and the
// read-side listings.
type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// CreateInvoiceInput are the caller-supplied fields for a new invoice.
type CreateInvoiceInput struct {
	ClientID    uint    `json:"client_id"`
	ProjectID   *uint   `json:"project_id,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// InvoiceDetail is an invoice enriched with denormalized client and project
// data for display and PDF rendering. It is a read model only and must never
// stand in for an authorization check.
type InvoiceDetail struct {
	models.Invoice
	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	ProjectName *string `json:"project_name,omitempty"`
}

// InvoiceSummary is a listing row with the client and project names joined in.
type InvoiceSummary struct {
	models.Invoice
	ClientName  string  `json:"client_name"`
	ProjectName *string `json:"project_name,omitempty"`
}

// Create issues a new pending invoice with the next sequential number for
// the current calendar year. The count-then-insert pair can race with a
// concurrent creation; the unique index on the number rejects the loser,
// which recounts and retries.
func (s *InvoiceService) Create(in CreateInvoiceInput) (*models.Invoice, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperr.ErrInvalidInput)
	}
	var client models.User
	if err := s.db.First(&client, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %d", apperr.ErrNotFound, in.ClientID)
		}
		return nil, err
	}
	// The project is only checked for existence, not for ownership by the
	// supplied client: the admin may invoice unrelated projects.
	if in.ProjectID != nil {
		var project models.Project
		if err := s.db.First(&project, *in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project %d", apperr.ErrNotFound, *in.ProjectID)
			}
			return nil, err
		}
	}

	for attempt := 0; attempt < numberingAttempts; attempt++ {
		issuedAt := s.now()
		sequence, err := s.nextSequence(issuedAt.Year())
		if err != nil {
			return nil, err
		}
		invoice := models.Invoice{
			ClientID:    in.ClientID,
			ProjectID:   in.ProjectID,
			Amount:      in.Amount,
			Description: in.Description,
			Status:      models.InvoiceStatusPending,
			Number:      models.FormatNumber(issuedAt.Year(), sequence),
			IssueDate:   issuedAt,
		}
		err = s.db.Create(&invoice).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent creation took this number; recount and retry.
			continue
		}
		if err != nil {
			return nil, err
		}
		return &invoice, nil
	}
	return nil, fmt.Errorf("%w: invoice number allocation kept colliding", apperr.ErrConflict)
}

// nextSequence counts invoices issued in the given year and returns the
// following sequence value.
func (s *InvoiceService) nextSequence(year int) (int, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)
	var count int64
	err := s.db.Model(&models.Invoice{}).
		Where("issue_date >= ? AND issue_date < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// Pay transitions a pending invoice to paid and records the payment time.
// The update is a single conditional statement so a concurrent second payer
// observes zero affected rows and fails with an invalid-state error.
func (s *InvoiceService) Pay(id uint) error {
	return s.transition(id, models.InvoiceStatusPaid)
}

// Cancel transitions a pending invoice to cancelled. There is no HTTP
// endpoint for this today; the schema and state machine allow it.
func (s *InvoiceService) Cancel(id uint) error {
	return s.transition(id, models.InvoiceStatusCancelled)
}

func (s *InvoiceService) transition(id uint, to models.InvoiceStatus) error {
	updates := map[string]any{"status": to}
	if to == models.InvoiceStatusPaid {
		updates["payment_date"] = s.now()
	}
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, models.InvoiceStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the invoice does not exist or it already left pending.
		var invoice models.Invoice
		if err := s.db.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice %d", apperr.ErrNotFound, id)
			}
			return err
		}
		return fmt.Errorf("%w: invoice %d is %s", apperr.ErrInvalidState, id, invoice.Status)
	}
	return nil
}

// Get fetches a bare invoice, for ownership and state checks.
func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &invoice, nil
}

// GetDetail fetches one invoice joined with its client and project names.
func (s *InvoiceService) GetDetail(id uint) (*InvoiceDetail, error) {
	var detail InvoiceDetail
	err := s.db.Table("invoices").
		Select("invoices.*, users.name AS client_name, users.email AS client_email, projects.name AS project_name").
		Joins("JOIN users ON users.id = invoices.client_id").
		Joins("LEFT JOIN projects ON projects.id = invoices.project_id").
		Where("invoices.id = ?", id).
		Take(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &detail, nil
}

// ListAll returns every invoice with client and project names, newest first.
func (s *InvoiceService) ListAll() ([]InvoiceSummary, error) {
	var rows []InvoiceSummary
	err := s.db.Table("invoices").
		Select("invoices.*, users.name AS client_name, projects.name AS project_name").
		Joins("JOIN users ON users.id = invoices.client_id").
		Joins("LEFT JOIN projects ON projects.id = invoices.project_id").
		Order("invoices.issue_date DESC").
		Scan(&rows).Error
	return rows, err
}

// ListByClient returns one client's invoices, newest first.
func (s *InvoiceService) ListByClient(clientID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.Where("client_id = ?", clientID).
		Order("issue_date DESC").
		Find(&invoices).Error
	return invoices, err
}

// ListByProject returns the invoices tied to one project, newest first.
func (s *InvoiceService) ListByProject(projectID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.Where("project_id = ?", projectID).
		Order("issue_date DESC").
		Find(&invoices).Error
	return invoices, err
}
