package invoices

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bigtal/bigtal/internal/platform/httpx"
	"github.com/bigtal/bigtal/internal/shared"
	"github.com/bigtal/bigtal/internal/view"
)

// Handler wires HTTP endpoints for the invoices module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the invoices handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type createInvoiceRequest struct {
	CustomerID int64               `json:"customer_id" validate:"required,gt=0"`
	CurrencyID int64               `json:"currency_id" validate:"required,gt=0"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	Items      []createItemRequest `json:"items" validate:"required,min=1,dive"`
	CreatedBy  int64               `json:"created_by" validate:"required,gt=0"`
}

type createItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid"`
}

type invoiceResponse struct {
	Invoice
	TotalDisplay string `json:"total_display"`
}

type invoiceWithItemsResponse struct {
	InvoiceWithItems
	TotalDisplay string `json:"total_display"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateInput{
		CustomerID: req.CustomerID,
		CurrencyID: req.CurrencyID,
		DueDate:    req.DueDate,
		CreatedBy:  req.CreatedBy,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoiceWithItemsResponse{
		InvoiceWithItems: *created,
		TotalDisplay:     view.Money(created.CurrencySymbol, created.TotalAmount),
	})
}

type listResponse struct {
	Data       []invoiceResponse `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := Status(q.Get("status"))
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	invoices, err := h.service.List(r.Context(), status)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pagination := shared.NewPagination(page, perPage, len(invoices))
	start := (pagination.Page - 1) * pagination.PerPage
	if start > len(invoices) {
		start = len(invoices)
	}
	end := start + pagination.PerPage
	if end > len(invoices) {
		end = len(invoices)
	}

	out := make([]invoiceResponse, 0, end-start)
	for _, inv := range invoices[start:end] {
		out = append(out, invoiceResponse{
			Invoice:      inv,
			TotalDisplay: view.Money(inv.CurrencySymbol, inv.TotalAmount),
		})
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: out, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceWithItemsResponse{
		InvoiceWithItems: *invoice,
		TotalDisplay:     view.Money(invoice.CurrencySymbol, invoice.TotalAmount),
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	invoice, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.logger.Error("update invoice status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceResponse{
		Invoice:      *invoice,
		TotalDisplay: view.Money(invoice.CurrencySymbol, invoice.TotalAmount),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("delete invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !deleted {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
