package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doctor-duty-notifier/internal/domain/entity"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

const webPushTTLSeconds = 300

type WebPushConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string // mailto: or https: contact for the push service
}

type webPushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
}

// WebPushSender delivers VAPID-signed browser notifications.
type WebPushSender struct {
	config WebPushConfig
	client webpush.HTTPClient
	log    *logrus.Logger
}

func NewWebPushSender(cfg WebPushConfig, log *logrus.Logger) *WebPushSender {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		log.Warn("VAPID keys not configured, web push notifications disabled")
	}
	return &WebPushSender{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

func (s *WebPushSender) Enabled() bool {
	return s != nil && s.config.PublicKey != "" && s.config.PrivateKey != ""
}

func (s *WebPushSender) Send(ctx context.Context, subscription entity.JSON, alerts []entity.UpcomingAlert) error {
	if !s.Enabled() {
		return ErrTransportDisabled
	}

	sub, err := decodeSubscription(subscription)
	if err != nil {
		return err
	}

	payload, err := pushPayload(alerts)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.config.Subscriber,
		VAPIDPublicKey:  s.config.PublicKey,
		VAPIDPrivateKey: s.config.PrivateKey,
		TTL:             webPushTTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryRejected, resp.StatusCode, body)
	}

	s.log.Debug("Push notification sent successfully")
	return nil
}

func pushPayload(alerts []entity.UpcomingAlert) ([]byte, error) {
	digest := DigestMessage(alerts)
	return json.Marshal(webPushPayload{
		Title: digest.Title,
		Body:  digest.Body,
		Icon:  "/logo.png",
		Badge: "/badge.png",
	})
}

func decodeSubscription(raw entity.JSON) (*webpush.Subscription, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	var sub webpush.Subscription
	if err := json.Unmarshal(encoded, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	if sub.Endpoint == "" || sub.Keys.Auth == "" || sub.Keys.P256dh == "" {
		return nil, fmt.Errorf("%w: endpoint and keys are required", ErrInvalidSubscription)
	}
	return &sub, nil
}
