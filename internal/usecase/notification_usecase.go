package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"doctor-duty-notifier/internal/converter"
	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/domain/repository"
	"doctor-duty-notifier/internal/notifier"
	"doctor-duty-notifier/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultDedupTTL = 2 * time.Hour

var (
	ErrEmailOrPushRequired       = errors.New("email or push subscription is required")
	ErrUnsubscribeTargetRequired = errors.New("email or subscription id is required")
	ErrSubscriptionNotFound      = errors.New("subscription not found")
)

type NotificationUsecase interface {
	Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, req *dto.UnsubscribeRequest) error
	ListSubscriptions(ctx context.Context) (*dto.SubscriptionListResponse, error)
	CheckAndNotify(ctx context.Context, now time.Time) (*dto.NotifyReport, error)
}

type notificationUsecase struct {
	db                     *gorm.DB
	log                    *logrus.Logger
	snapshots              *service.SnapshotStore
	subscriptionRepo       repository.SubscriptionRepository
	fcmTokenRepo           repository.FCMTokenRepository
	doctorSubscriptionRepo repository.DoctorSubscriptionRepository
	dedup                  service.AlertDeduplicator
	dispatcher             notifier.AlertDispatcher
	dedupTTL               time.Duration
}

func NewNotificationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	snapshots *service.SnapshotStore,
	subscriptionRepo repository.SubscriptionRepository,
	fcmTokenRepo repository.FCMTokenRepository,
	doctorSubscriptionRepo repository.DoctorSubscriptionRepository,
	dedup service.AlertDeduplicator,
	dispatcher notifier.AlertDispatcher,
	dedupTTL time.Duration,
) NotificationUsecase {
	if dedupTTL <= 0 {
		dedupTTL = DefaultDedupTTL
	}
	return &notificationUsecase{
		db:                     db,
		log:                    log,
		snapshots:              snapshots,
		subscriptionRepo:       subscriptionRepo,
		fcmTokenRepo:           fcmTokenRepo,
		doctorSubscriptionRepo: doctorSubscriptionRepo,
		dedup:                  dedup,
		dispatcher:             dispatcher,
		dedupTTL:               dedupTTL,
	}
}

// Subscribe registers an email and/or web push subscriber. An existing email
// subscription is re-activated and its push endpoint refreshed.
func (u *notificationUsecase) Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.SubscriptionResponse, error) {
	email := normalizeEmail(req.Email)
	push := converter.PushPayloadToJSON(req.PushSubscription)
	if email == nil && push == nil {
		return nil, ErrEmailOrPushRequired
	}

	if email != nil {
		existing, err := u.subscriptionRepo.FindByEmail(u.db, *email)
		if err != nil {
			u.log.Warnf("Failed to find subscription by email: %+v", err)
			return nil, err
		}
		if existing != nil {
			existing.IsActive = true
			if push != nil {
				existing.PushSubscription = push
			}
			if err := u.subscriptionRepo.Update(u.db, existing); err != nil {
				u.log.Warnf("Failed to update subscription: %+v", err)
				return nil, err
			}
			return converter.SubscriptionToResponse(existing), nil
		}
	} else {
		existing, err := u.subscriptionRepo.FindActiveByEndpoint(u.db, req.PushSubscription.Endpoint)
		if err != nil {
			u.log.Warnf("Failed to find subscription by endpoint: %+v", err)
			return nil, err
		}
		if existing != nil {
			return converter.SubscriptionToResponse(existing), nil
		}
	}

	subscription := &entity.Subscription{
		Email:            email,
		PushSubscription: push,
		IsActive:         true,
	}
	if err := u.subscriptionRepo.Create(u.db, subscription); err != nil {
		u.log.Warnf("Failed to create subscription: %+v", err)
		return nil, err
	}

	u.log.Infof("New subscription %d", subscription.ID)
	return converter.SubscriptionToResponse(subscription), nil
}

func (u *notificationUsecase) Unsubscribe(ctx context.Context, req *dto.UnsubscribeRequest) error {
	var (
		subscription *entity.Subscription
		err          error
	)

	switch {
	case req.SubscriptionID != nil:
		subscription, err = u.subscriptionRepo.FindByID(u.db, *req.SubscriptionID)
	case normalizeEmail(req.Email) != nil:
		subscription, err = u.subscriptionRepo.FindActiveByEmail(u.db, *normalizeEmail(req.Email))
	default:
		return ErrUnsubscribeTargetRequired
	}
	if err != nil {
		u.log.Warnf("Failed to find subscription: %+v", err)
		return err
	}
	if subscription == nil || !subscription.IsActive {
		return ErrSubscriptionNotFound
	}

	if err := u.subscriptionRepo.Deactivate(u.db, subscription.ID); err != nil {
		u.log.Warnf("Failed to deactivate subscription: %+v", err)
		return err
	}
	return nil
}

func (u *notificationUsecase) ListSubscriptions(ctx context.Context) (*dto.SubscriptionListResponse, error) {
	subscriptions, err := u.subscriptionRepo.FindActive(u.db)
	if err != nil {
		u.log.Warnf("Failed to find subscriptions: %+v", err)
		return nil, err
	}

	return &dto.SubscriptionListResponse{
		Subscriptions: converter.SubscriptionsToResponses(subscriptions),
		Total:         len(subscriptions),
	}, nil
}

// CheckAndNotify matches the current snapshot against now and dispatches
// every alert that has not been sent yet. Delivery failures are logged and
// counted, never retried.
func (u *notificationUsecase) CheckAndNotify(ctx context.Context, now time.Time) (*dto.NotifyReport, error) {
	alerts := service.MatchUpcoming(u.snapshots.Current().Records, now)
	report := &dto.NotifyReport{Matched: len(alerts)}
	if len(alerts) == 0 {
		u.log.Debug("No upcoming doctors found")
		return report, nil
	}

	// Recipients are loaded before any alert is claimed, so a failed lookup
	// leaves the alert to the next pass instead of losing it.
	subscriptions, err := u.subscriptionRepo.FindActive(u.db)
	if err != nil {
		u.log.Warnf("Failed to find subscriptions: %+v", err)
		return report, err
	}

	fresh := make([]entity.UpcomingAlert, 0, len(alerts))
	freshTokens := make([][]string, 0, len(alerts))
	for _, alert := range alerts {
		tokens, err := u.deviceTokensFor(alert.DoctorName)
		if err != nil {
			u.log.Warnf("Failed to find devices for %s: %+v", alert.DoctorName, err)
			continue
		}

		first, err := u.dedup.MarkSent(ctx, alert, u.dedupTTL)
		if err != nil {
			// Unknown state counts as already sent.
			continue
		}
		if first {
			fresh = append(fresh, alert)
			freshTokens = append(freshTokens, tokens)
		}
	}
	report.New = len(fresh)
	if len(fresh) == 0 {
		return report, nil
	}
	u.log.Infof("Found %d upcoming doctor(s), %d new", len(alerts), len(fresh))

	delivery := u.dispatcher.NotifySubscribers(ctx, subscriptions, fresh)
	for i, alert := range fresh {
		delivery.Add(u.dispatcher.NotifyDevices(ctx, freshTokens[i], alert))
	}

	report.Sent = delivery.Sent
	report.Failed = delivery.Failed
	report.Skipped = delivery.Skipped
	return report, nil
}

func (u *notificationUsecase) deviceTokensFor(doctorName string) ([]string, error) {
	deviceIDs, err := u.doctorSubscriptionRepo.FindDeviceIDsByDoctor(u.db, doctorName)
	if err != nil || len(deviceIDs) == 0 {
		return nil, err
	}

	tokens, err := u.fcmTokenRepo.FindByDeviceIDs(u.db, deviceIDs)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, token.Token)
	}
	return out, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
