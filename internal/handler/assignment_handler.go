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

type AssignmentHandler struct {
	service  *service.AssignmentService
	validate *validator.Validate
}

func NewAssignmentHandler(service *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Update(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.service.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, assignments)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	assignments, err := h.service.Get(deviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, assignments)
}

func (h *AssignmentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	if err := h.service.Clear(deviceID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Assignments cleared"})
}

func (h *AssignmentHandler) Add(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	var req domain.ModifyAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	added, total, err := h.service.Add(deviceID, req.ContentIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]int{"added": added, "total": total})
}

func (h *AssignmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	var req domain.ModifyAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	removed, total, err := h.service.Remove(deviceID, req.ContentIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]int{"removed": removed, "total": total})
}
