package notifier

import (
	"context"
	"encoding/json"
	"testing"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSubscription(t *testing.T) {
	sub, err := decodeSubscription(entity.JSON{
		"endpoint": "https://push.example/abc",
		"keys":     map[string]interface{}{"auth": "auth-secret", "p256dh": "client-key"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/abc", sub.Endpoint)
	assert.Equal(t, "auth-secret", sub.Keys.Auth)
	assert.Equal(t, "client-key", sub.Keys.P256dh)

	_, err = decodeSubscription(entity.JSON{"endpoint": "https://push.example/abc"})
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

func TestPushPayload(t *testing.T) {
	raw, err := pushPayload([]entity.UpcomingAlert{testAlert()})
	require.NoError(t, err)

	var payload webPushPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "🏥 1 Doctor(s) Arriving Soon", payload.Title)
	assert.Equal(t, "• Dr. Smith in 15 min", payload.Body)
	assert.Equal(t, "/logo.png", payload.Icon)
}

func TestWebPushSenderDisabledWithoutKeys(t *testing.T) {
	sender := NewWebPushSender(WebPushConfig{}, newTestLogger())
	assert.False(t, sender.Enabled())
	assert.ErrorIs(t, sender.Send(context.Background(), entity.JSON{}, nil), ErrTransportDisabled)
}
