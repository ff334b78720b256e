package converter

import (
	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
)

func SubscriptionToResponse(sub *entity.Subscription) *dto.SubscriptionResponse {
	if sub == nil {
		return nil
	}
	return &dto.SubscriptionResponse{
		ID:        sub.ID,
		Email:     sub.Email,
		HasPush:   sub.HasPush(),
		IsActive:  sub.IsActive,
		CreatedAt: sub.CreatedAt,
	}
}

func SubscriptionsToResponses(subs []entity.Subscription) []dto.SubscriptionResponse {
	responses := make([]dto.SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = *SubscriptionToResponse(&subs[i])
	}
	return responses
}

// PushPayloadToJSON flattens a push subscription into the stored JSONB shape.
func PushPayloadToJSON(payload *dto.PushSubscriptionPayload) entity.JSON {
	if payload == nil {
		return nil
	}
	out := entity.JSON{
		"endpoint": payload.Endpoint,
		"keys": map[string]interface{}{
			"auth":   payload.Keys.Auth,
			"p256dh": payload.Keys.P256dh,
		},
	}
	if payload.ExpirationTime != nil {
		out["expirationTime"] = *payload.ExpirationTime
	}
	return out
}
