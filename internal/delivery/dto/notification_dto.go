package dto

import "time"

// Request DTOs

type PushKeys struct {
	Auth   string `json:"auth" validate:"required"`
	P256dh string `json:"p256dh" validate:"required"`
}

type PushSubscriptionPayload struct {
	Endpoint       string   `json:"endpoint" validate:"required,url"`
	ExpirationTime *int64   `json:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys" validate:"required"`
}

type SubscribeRequest struct {
	Email            *string                  `json:"email" validate:"omitempty,email,max=255"`
	PushSubscription *PushSubscriptionPayload `json:"push_subscription" validate:"omitempty"`
}

type UnsubscribeRequest struct {
	Email          *string `json:"email" validate:"omitempty,email"`
	SubscriptionID *int    `json:"subscription_id" validate:"omitempty,min=1"`
}

// Response DTOs

type SubscriptionResponse struct {
	ID        int       `json:"id"`
	Email     *string   `json:"email,omitempty"`
	HasPush   bool      `json:"has_push"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Total         int                    `json:"total"`
}

// NotifyReport summarises one CheckAndNotify pass.
type NotifyReport struct {
	Matched int `json:"matched"`
	New     int `json:"new"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
