package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dkochetov/storefront/internal/middleware"
	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/product"
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
	products, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())

	var req product.CreateRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), p.ID, &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req product.UpdateRequest
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
