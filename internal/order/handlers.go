package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dkochetov/storefront/internal/middleware"
	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/order"
	"github.com/dkochetov/storefront/internal/types/user"
	"github.com/dkochetov/storefront/internal/validation"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
)

type Handler struct {
	svc      *Service
	validate *validatorv10.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validation.New()}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())

	var req order.CreateOrderRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), p.ID, &req)
	if err != nil {
		var stockErr *storage.InsufficientStockError
		switch {
		case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrShippingRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrProductNotFound):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())

	orders, err := h.svc.ListMyOrders(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	// Заказ видят только владелец и администратор.
	if o.UserID != p.ID && p.Role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAllOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req order.UpdateStatusRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.ChangeStatus(r.Context(), id, order.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
