package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bigtal/bigtal/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the products handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/sellable", h.sellable)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.disable)
}

type productRequest struct {
	Name         string   `json:"name" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=sell buy both"`
	CategoryID   *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SellPrice    *float64 `json:"sell_price,omitempty" validate:"omitempty,gte=0"`
	BuyPrice     *float64 `json:"buy_price,omitempty" validate:"omitempty,gte=0"`
	CurrencyID   int64    `json:"currency_id" validate:"required,gt=0"`
	InitialStock int64    `json:"stock_qty,omitempty"`
	SupplierID   *int64   `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	CreatedBy    int64    `json:"created_by,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.service.Create(r.Context(), CreateInput{
		Name:         req.Name,
		Type:         ProductType(req.Type),
		CategoryID:   req.CategoryID,
		SellPrice:    req.SellPrice,
		BuyPrice:     req.BuyPrice,
		CurrencyID:   req.CurrencyID,
		InitialStock: req.InitialStock,
		SupplierID:   req.SupplierID,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "category_id must be an integer")
			return
		}
		products, err := h.service.ListByCategory(r.Context(), categoryID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, products)
		return
	}
	includeDisabled := q.Get("include_disabled") == "true"
	products, err := h.service.List(r.Context(), includeDisabled)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "q is required")
		return
	}
	products, err := h.service.Search(r.Context(), term)
	if err != nil {
		h.logger.Error("search products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) sellable(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListSellable(r.Context())
	if err != nil {
		h.logger.Error("list sellable products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:       req.Name,
		Type:       ProductType(req.Type),
		CategoryID: req.CategoryID,
		SellPrice:  req.SellPrice,
		BuyPrice:   req.BuyPrice,
		CurrencyID: req.CurrencyID,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		h.logger.Error("update product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Disable(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"disabled": true})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
