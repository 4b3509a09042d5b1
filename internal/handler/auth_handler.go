package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	service  *service.AuthService
	validate *validator.Validate
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Login(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		response.Unauthorized(w, "Missing authorization header")
		return
	}

	result, err := h.service.Refresh(token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		response.Unauthorized(w, "Missing authorization header")
		return
	}

	admin, err := h.service.Validate(token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, admin)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
