package handler

import (
	"encoding/json"
	"net/http"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"

	"github.com/go-playground/validator/v10"
)

// DeviceAuthHandler serves the unauthenticated pairing flow: a device has
// no credentials yet, only a phone number its owner can receive codes on.
type DeviceAuthHandler struct {
	service  *service.DeviceAuthService
	validate *validator.Validate
}

func NewDeviceAuthHandler(service *service.DeviceAuthService) *DeviceAuthHandler {
	return &DeviceAuthHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *DeviceAuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	phone, err := h.service.SendOTP(req.Phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.SuccessMessage(w, map[string]string{"phone": phone}, "OTP sent successfully")
}

func (h *DeviceAuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	creds, err := h.service.VerifyOTP(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, creds)
}

// ResendOTP issues a fresh code; the previous one stops working.
func (h *DeviceAuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	h.SendOTP(w, r)
}

func (h *DeviceAuthHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		response.BadRequest(w, "Phone is required")
		return
	}

	status, err := h.service.CheckStatus(phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, status)
}
