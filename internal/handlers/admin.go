package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/httpx"
	"github.com/tecnicanomade/riego/internal/models"
	"github.com/tecnicanomade/riego/internal/validation"
)

// AdminHandler serves the admin-only catalog surface: clients, projects,
// stock and project materials. The role gate runs in the router; handlers
// here assume an admin identity.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// projectRow is a project joined with its owning client, for admin listings.
type projectRow struct {
	models.Project
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

// ListClients returns the active client accounts.
func (h *AdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	var clients []models.User
	err := h.db.Where("active = ? AND role = ?", true, models.RoleClient).
		Find(&clients).Error
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// ListProjects returns every project with its client's name and email.
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var rows []projectRow
	err := h.db.Table("projects").
		Select("projects.*, users.name AS client_name, users.email AS client_email").
		Joins("JOIN users ON users.id = projects.client_id").
		Order("projects.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// UpdateProjectStatus sets a project's status to one of the defined values.
func (h *AdminHandler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req struct {
		Status models.ProjectStatus `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !req.Status.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", validation.Violations{"status": "invalid_value"})
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
	if err := h.db.Model(&project).Update("status", req.Status).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// ListStock returns the global catalog sorted alphabetically by name.
func (h *AdminHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	var items []models.StockItem
	if err := h.db.Order("name").Find(&items).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

type stockRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
	Unit        *string `json:"unit"`
}

// CreateStock adds a catalog entry.
func (h *AdminHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	validation.Required("name", name, v)
	if req.Quantity == nil {
		v["quantity"] = "required"
	} else {
		validation.NonNegativeInt("quantity", *req.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	item := models.StockItem{Name: name, Quantity: *req.Quantity, Unit: "unidad"}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Unit != nil && *req.Unit != "" {
		item.Unit = *req.Unit
	}
	if err := h.db.Create(&item).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// UpdateStock applies a partial update; only supplied fields change.
func (h *AdminHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req stockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", validation.Violations{"quantity": "must_be_non_negative"})
		return
	}

	var item models.StockItem
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}

	updates := map[string]any{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil && *req.Unit != "" {
		updates["unit"] = *req.Unit
	}
	if len(updates) > 0 {
		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			httpx.Error(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, item)
}

// DeleteStock removes a catalog entry.
func (h *AdminHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var item models.StockItem
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}
	if err := h.db.Delete(&item).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": item.ID})
}

// ListProjectMaterials returns a project's assigned materials with their
// stock items, sorted by stock name.
func (h *AdminHandler) ListProjectMaterials(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	materials, err := materialsForProject(h.db, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, materials)
}

// AddProjectMaterial assigns a quantity of a stock item to a project.
// Project-material quantities are tracked independently of stock levels;
// assigning does not decrement the catalog.
func (h *AdminHandler) AddProjectMaterial(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req struct {
		StockItemID uint `json:"stock_item_id"`
		Quantity    *int `json:"quantity"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.RequiredID("stock_item_id", req.StockItemID, v)
	if req.Quantity == nil {
		v["quantity"] = "required"
	} else {
		validation.NonNegativeInt("quantity", *req.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	var project models.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}
	var stock models.StockItem
	if err := h.db.First(&stock, req.StockItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}

	material := models.ProjectMaterial{
		ProjectID:   projectID,
		StockItemID: req.StockItemID,
		Quantity:    *req.Quantity,
	}
	if err := h.db.Create(&material).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	material.StockItem = stock
	httpx.JSON(w, http.StatusCreated, material)
}

// RemoveProjectMaterial unassigns a material from a project.
func (h *AdminHandler) RemoveProjectMaterial(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project_id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var material models.ProjectMaterial
	if err := h.db.Where("id = ? AND project_id = ?", id, projectID).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}
	if err := h.db.Delete(&material).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": material.ID})
}

// pathID parses a numeric path wildcard.
func pathID(r *http.Request, name string) (uint, error) {
	id64, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id64 == 0 {
		return 0, apperr.ErrInvalidInput
	}
	return uint(id64), nil
}

// materialsForProject loads a project's materials with their stock items,
// sorted by stock name.
func materialsForProject(db *gorm.DB, projectID uint) ([]models.ProjectMaterial, error) {
	var materials []models.ProjectMaterial
	err := db.
		Joins("JOIN stock_items ON stock_items.id = project_materials.stock_item_id").
		Where("project_materials.project_id = ?", projectID).
		Order("stock_items.name").
		Preload("StockItem").
		Find(&materials).Error
	return materials, err
}
