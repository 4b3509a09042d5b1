package handler

import (
	"encoding/json"
	"net/http"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type FranchiseHandler struct {
	service  *service.FranchiseService
	validate *validator.Validate
}

func NewFranchiseHandler(service *service.FranchiseService) *FranchiseHandler {
	return &FranchiseHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *FranchiseHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFranchiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	franchise, err := h.service.Register(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, franchise)
}

func (h *FranchiseHandler) List(w http.ResponseWriter, r *http.Request) {
	franchises, err := h.service.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, franchises)
}

func (h *FranchiseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "Franchise ID is required")
		return
	}

	franchise, err := h.service.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, franchise)
}

func (h *FranchiseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateFranchiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	franchise, err := h.service.Update(id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, franchise)
}

func (h *FranchiseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Franchise deleted successfully"})
}

// RegenerateToken is the only endpoint besides registration that returns a
// plaintext device token.
func (h *FranchiseHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	token, err := h.service.RegenerateToken(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"token": token})
}
