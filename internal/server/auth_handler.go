package server

import (
	"net/http"
	"strings"

	"cloud-disk/internal/model"
	"cloud-disk/pkg/apierror"
)

type AuthHandler struct {
	auth *AuthService
}

func NewAuthHandler(auth *AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, apierror.New("BAD_REQUEST", "username and password are required", "", http.StatusBadRequest))
		return
	}

	pair, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refresh token is required", "", http.StatusBadRequest))
		return
	}

	pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}
