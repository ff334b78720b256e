package notifier

import (
	"context"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const DefaultRatePerSecond = 10

type EmailTransport interface {
	Enabled() bool
	Send(ctx context.Context, to string, alerts []entity.UpcomingAlert) error
}

type PushTransport interface {
	Enabled() bool
	Send(ctx context.Context, subscription entity.JSON, alerts []entity.UpcomingAlert) error
}

type DeviceTransport interface {
	Enabled() bool
	Send(ctx context.Context, tokens []string, msg Message) SendResult
}

// DeliveryReport summarises one dispatch. Skipped counts deliveries a
// disabled transport could not attempt.
type DeliveryReport struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (r *DeliveryReport) Add(o DeliveryReport) {
	r.Sent += o.Sent
	r.Failed += o.Failed
	r.Skipped += o.Skipped
}

// AlertDispatcher fans alerts out to the configured channels.
type AlertDispatcher interface {
	NotifySubscribers(ctx context.Context, subscriptions []entity.Subscription, alerts []entity.UpcomingAlert) DeliveryReport
	NotifyDevices(ctx context.Context, tokens []string, alert entity.UpcomingAlert) DeliveryReport
}

type Dispatcher struct {
	limiter *rate.Limiter
	email   EmailTransport
	push    PushTransport
	devices DeviceTransport
	log     *logrus.Logger
}

// NewDispatcher shares one limiter across all transports. ratePerSecond <= 0
// selects DefaultRatePerSecond.
func NewDispatcher(ratePerSecond float64, email EmailTransport, push PushTransport, devices DeviceTransport, log *logrus.Logger) *Dispatcher {
	if ratePerSecond <= 0 {
		ratePerSecond = DefaultRatePerSecond
	}
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Dispatcher{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		email:   email,
		push:    push,
		devices: devices,
		log:     log,
	}
}

func (d *Dispatcher) NotifySubscribers(ctx context.Context, subscriptions []entity.Subscription, alerts []entity.UpcomingAlert) DeliveryReport {
	var report DeliveryReport
	if len(alerts) == 0 {
		return report
	}

	for _, sub := range subscriptions {
		if sub.Email != nil && *sub.Email != "" {
			report.Add(d.deliver(ctx, d.email.Enabled(), func() error {
				return d.email.Send(ctx, *sub.Email, alerts)
			}, "email", sub.ID))
		}
		if sub.HasPush() {
			report.Add(d.deliver(ctx, d.push.Enabled(), func() error {
				return d.push.Send(ctx, sub.PushSubscription, alerts)
			}, "web push", sub.ID))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return report
}

func (d *Dispatcher) NotifyDevices(ctx context.Context, tokens []string, alert entity.UpcomingAlert) DeliveryReport {
	var report DeliveryReport
	if len(tokens) == 0 {
		return report
	}
	if !d.devices.Enabled() {
		report.Skipped = len(tokens)
		return report
	}
	if err := d.limiter.WaitN(ctx, min(len(tokens), d.limiter.Burst())); err != nil {
		report.Failed = len(tokens)
		return report
	}

	result := d.devices.Send(ctx, tokens, AlertMessage(alert))
	report.Sent = result.Success
	report.Failed = result.Failure
	return report
}

func (d *Dispatcher) deliver(ctx context.Context, enabled bool, send func() error, channel string, subscriptionID int) DeliveryReport {
	if !enabled {
		return DeliveryReport{Skipped: 1}
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return DeliveryReport{Failed: 1}
	}
	if err := send(); err != nil {
		d.log.Warnf("Failed to send %s for subscription %d: %+v", channel, subscriptionID, err)
		return DeliveryReport{Failed: 1}
	}
	return DeliveryReport{Sent: 1}
}
