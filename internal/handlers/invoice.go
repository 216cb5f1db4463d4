package handlers

import (
	"fmt"
	"net/http"

	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/httpx"
	"github.com/tecnicanomade/riego/internal/i18n"
	"github.com/tecnicanomade/riego/internal/pdf"
	"github.com/tecnicanomade/riego/internal/policy"
	"github.com/tecnicanomade/riego/internal/services"
	"github.com/tecnicanomade/riego/internal/validation"
)

// InvoiceHandler serves invoice creation, listing and the PDF artifact.
type InvoiceHandler struct {
	invoices *services.InvoiceService
}

func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create issues a new invoice (admin surface).
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInvoiceInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.RequiredID("client_id", in.ClientID, v)
	validation.PositiveFloat("amount", in.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	invoice, err := h.invoices.Create(in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// ListAll returns every invoice with client and project names (admin surface).
func (h *InvoiceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	rows, err := h.invoices.ListAll()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// PDF streams the rendered snapshot of one invoice. The enriched fetch is a
// read model; authorization is its own step and runs before a single byte
// of the document is produced.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	detail, err := h.invoices.GetDetail(id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := policy.Authorize(identity, detail); err != nil {
		httpx.Error(w, err)
		return
	}

	lang := i18n.LangFromContext(r.Context())
	data := pdf.InvoiceData{
		Number:      detail.DisplayNumber(),
		IssueDate:   detail.IssueDate,
		ClientName:  detail.ClientName,
		ClientEmail: detail.ClientEmail,
		Description: detail.Description,
		Amount:      detail.Amount,
		StatusLabel: i18n.T(lang, string(detail.Status)),
		PaymentDate: detail.PaymentDate,
	}
	if detail.ProjectName != nil {
		data.ProjectName = *detail.ProjectName
	}

	bytes, err := pdf.Invoice(data, lang)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"factura-%s.pdf\"", detail.DisplayNumber()))
	w.Write(bytes)
}
