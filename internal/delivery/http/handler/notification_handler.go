package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/usecase"
	"doctor-duty-notifier/pkg/response"
	"doctor-duty-notifier/pkg/validator"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req dto.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	subscription, err := h.notificationUsecase.Subscribe(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailOrPushRequired) {
			response.BadRequest(w, "Either email or push subscription is required")
			return
		}
		response.InternalServerError(w, "Failed to subscribe")
		return
	}

	response.Success(w, http.StatusOK, "Subscribed successfully", subscription)
}

func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req dto.UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.notificationUsecase.Unsubscribe(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnsubscribeTargetRequired):
			response.BadRequest(w, "Either email or subscription_id is required")
		case errors.Is(err, usecase.ErrSubscriptionNotFound):
			response.NotFound(w, "Subscription not found")
		default:
			response.InternalServerError(w, "Failed to unsubscribe")
		}
		return
	}

	response.Success(w, http.StatusOK, "Unsubscribed successfully", nil)
}

func (h *NotificationHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := h.notificationUsecase.ListSubscriptions(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get subscriptions")
		return
	}

	response.Success(w, http.StatusOK, "Subscriptions retrieved successfully", subscriptions)
}
