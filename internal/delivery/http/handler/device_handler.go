package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/usecase"
	"doctor-duty-notifier/pkg/response"
	"doctor-duty-notifier/pkg/validator"

	"github.com/gorilla/mux"
)

type DeviceHandler struct {
	deviceUsecase usecase.DeviceUsecase
	validator     *validator.CustomValidator
}

func NewDeviceHandler(deviceUsecase usecase.DeviceUsecase, validator *validator.CustomValidator) *DeviceHandler {
	return &DeviceHandler{
		deviceUsecase: deviceUsecase,
		validator:     validator,
	}
}

func (h *DeviceHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	created, err := h.deviceUsecase.RegisterToken(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to register FCM token")
		return
	}

	message := "FCM token updated"
	if created {
		message = "FCM token registered"
	}
	response.Success(w, http.StatusOK, message, map[string]string{"device_id": req.DeviceID})
}

func (h *DeviceHandler) SubscribeDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.DoctorSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	created, err := h.deviceUsecase.SubscribeDoctor(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to subscribe to doctor")
		return
	}

	message := "Already subscribed to this doctor"
	if created {
		message = "Subscribed to " + req.DoctorName
	}
	response.Success(w, http.StatusOK, message, nil)
}

func (h *DeviceHandler) UnsubscribeDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.DoctorSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.deviceUsecase.UnsubscribeDoctor(r.Context(), &req); err != nil {
		if errors.Is(err, usecase.ErrDoctorSubscriptionNotFound) {
			response.NotFound(w, "Subscription not found")
			return
		}
		response.InternalServerError(w, "Failed to unsubscribe from doctor")
		return
	}

	response.Success(w, http.StatusOK, "Unsubscribed from "+req.DoctorName, nil)
}

func (h *DeviceHandler) GetDeviceSubscriptions(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	subscriptions, err := h.deviceUsecase.GetDeviceSubscriptions(r.Context(), deviceID)
	if err != nil {
		response.InternalServerError(w, "Failed to get device subscriptions")
		return
	}

	response.Success(w, http.StatusOK, "Device subscriptions retrieved successfully", subscriptions)
}
