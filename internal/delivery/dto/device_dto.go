package dto

// Request DTOs

type RegisterTokenRequest struct {
	DeviceID string `json:"device_id" validate:"required,max=255"`
	FCMToken string `json:"fcm_token" validate:"required"`
}

type DoctorSubscriptionRequest struct {
	DeviceID   string `json:"device_id" validate:"required,max=255"`
	DoctorName string `json:"doctor_name" validate:"required,max=255"`
}

// Response DTOs

type DeviceSubscriptionsResponse struct {
	DeviceID          string   `json:"device_id"`
	SubscribedDoctors []string `json:"subscribed_doctors"`
	Count             int      `json:"count"`
}
