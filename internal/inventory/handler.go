package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bigtal/bigtal/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/movements", h.recordMovement)
	r.Get("/movements", h.listMovements)
	r.Get("/overview", h.overview)
	r.Get("/value", h.stockValue)
	r.Get("/low-stock", h.lowStock)
}

type recordMovementRequest struct {
	ProductID     int64    `json:"product_id" validate:"required,gt=0"`
	Quantity      int64    `json:"quantity" validate:"required"`
	MovementType  string   `json:"movement_type" validate:"required,oneof=purchase adjustment return sale initial"`
	ReferenceType *string  `json:"reference_type,omitempty"`
	ReferenceID   *int64   `json:"reference_id,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	UnitCost      *float64 `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	CreatedBy     int64    `json:"created_by" validate:"required,gt=0"`
	RequestKey    *string  `json:"request_key,omitempty"`
}

func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request) {
	var req recordMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := MovementInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Type:      MovementType(req.MovementType),
		UnitCost:  req.UnitCost,
		CreatedBy: req.CreatedBy,
	}
	if req.ReferenceType != nil {
		input.ReferenceType = *req.ReferenceType
	}
	if req.ReferenceID != nil {
		input.ReferenceID = *req.ReferenceID
	}
	if req.Notes != nil {
		input.Notes = *req.Notes
	}
	if req.RequestKey != nil {
		input.RequestKey = *req.RequestKey
	}

	movement, err := h.service.RecordMovement(r.Context(), input)
	if err != nil {
		h.logger.Error("record movement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var productID int64
	if raw := q.Get("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id must be an integer")
			return
		}
		productID = id
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be an integer")
			return
		}
		limit = n
	}

	movements, err := h.service.Movements(r.Context(), productID, limit)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("inventory overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) stockValue(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.StockValue(r.Context())
	if err != nil {
		h.logger.Error("stock value", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"stock_value": value})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	var threshold int64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "threshold must be an integer")
			return
		}
		threshold = n
	}
	items, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
