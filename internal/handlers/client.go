package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/httpx"
	"github.com/tecnicanomade/riego/internal/models"
	"github.com/tecnicanomade/riego/internal/policy"
	"github.com/tecnicanomade/riego/internal/services"
	"github.com/tecnicanomade/riego/internal/validation"
)

// ClientHandler serves the authenticated client surface. Every read or
// mutation of an owned entity runs the ownership check from the policy
// package after fetching, so "exists but not yours" stays distinguishable
// from "does not exist".
type ClientHandler struct {
	db       *gorm.DB
	invoices *services.InvoiceService
}

func NewClientHandler(db *gorm.DB, invoices *services.InvoiceService) *ClientHandler {
	return &ClientHandler{db: db, invoices: invoices}
}

// ListProjects returns the caller's own projects, newest first.
func (h *ClientHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var projects []models.Project
	err := h.db.Where("client_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

// CreateProject opens a new project for the caller. Status always starts as
// not started, regardless of input; only admins move it afterwards.
func (h *ClientHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	project := models.Project{
		ClientID:    identity.UserID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatusNotStarted,
	}
	if err := h.db.Create(&project).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

// ProjectDetail returns one owned project with its materials and invoices.
func (h *ClientHandler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var project models.Project
	if err := h.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}
	if err := policy.Authorize(identity, &project); err != nil {
		httpx.Error(w, err)
		return
	}

	materials, err := materialsForProject(h.db, project.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	invoices, err := h.invoices.ListByProject(project.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"project":   project,
		"materials": materials,
		"invoices":  invoices,
	})
}

// ListMaterials exposes the global stock catalog, read-only.
func (h *ClientHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	var items []models.StockItem
	if err := h.db.Order("name").Find(&items).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// ListInvoices returns the caller's own invoices, newest first.
func (h *ClientHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	invoices, err := h.invoices.ListByClient(identity.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// PayInvoice settles one of the caller's pending invoices. The ownership
// gate runs before the state gate: paying someone else's cancelled invoice
// reports forbidden, not invalid state.
func (h *ClientHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invoice, err := h.invoices.Get(id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := policy.Authorize(identity, invoice); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.invoices.Pay(id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"paid": id})
}
