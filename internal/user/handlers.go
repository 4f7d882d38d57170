package user

import (
	"encoding/json"
	"net/http"

	"github.com/dkochetov/storefront/internal/types/user"
	"github.com/dkochetov/storefront/internal/validation"

	validatorv10 "github.com/go-playground/validator/v10"
)

type Handler struct {
	svc      *Service
	validate *validatorv10.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validation.New()}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		code := http.StatusInternalServerError
		switch err {
		case ErrPasswordTooShort:
			code = http.StatusBadRequest
		case ErrUserExists:
			code = http.StatusConflict
		}
		writeError(w, code, err.Error())
		return
	}

	token, u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authentication after registration failed")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := validation.DecodeAndValidate(r, &req, h.validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
