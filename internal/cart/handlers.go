package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dkochetov/storefront/internal/middleware"
	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/cart"
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())

	items, err := h.svc.List(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cart")
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())

	var req cart.AddRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.svc.Add(r.Context(), p.ID, req.ProductID, req.Quantity)
	if err != nil {
		var stockErr *storage.InsufficientStockError
		switch {
		case errors.Is(err, storage.ErrProductNotFound):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to add to cart")
		}
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var req cart.UpdateRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.svc.UpdateQuantity(r.Context(), p.ID, itemID, req.Quantity)
	if err != nil {
		var stockErr *storage.InsufficientStockError
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrCartItemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update cart item")
		}
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}
	if err := h.svc.Remove(r.Context(), p.ID, itemID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
