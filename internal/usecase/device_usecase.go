package usecase

import (
	"context"
	"errors"
	"strings"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorSubscriptionNotFound = errors.New("doctor subscription not found")
)

type DeviceUsecase interface {
	// RegisterToken stores the device token and reports whether the device is new.
	RegisterToken(ctx context.Context, req *dto.RegisterTokenRequest) (bool, error)
	// SubscribeDoctor is idempotent and reports whether a subscription was created.
	SubscribeDoctor(ctx context.Context, req *dto.DoctorSubscriptionRequest) (bool, error)
	UnsubscribeDoctor(ctx context.Context, req *dto.DoctorSubscriptionRequest) error
	GetDeviceSubscriptions(ctx context.Context, deviceID string) (*dto.DeviceSubscriptionsResponse, error)
}

type deviceUsecase struct {
	db                     *gorm.DB
	log                    *logrus.Logger
	fcmTokenRepo           repository.FCMTokenRepository
	doctorSubscriptionRepo repository.DoctorSubscriptionRepository
}

func NewDeviceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	fcmTokenRepo repository.FCMTokenRepository,
	doctorSubscriptionRepo repository.DoctorSubscriptionRepository,
) DeviceUsecase {
	return &deviceUsecase{
		db:                     db,
		log:                    log,
		fcmTokenRepo:           fcmTokenRepo,
		doctorSubscriptionRepo: doctorSubscriptionRepo,
	}
}

func (u *deviceUsecase) RegisterToken(ctx context.Context, req *dto.RegisterTokenRequest) (bool, error) {
	deviceID := strings.TrimSpace(req.DeviceID)

	existing, err := u.fcmTokenRepo.FindByDeviceID(u.db, deviceID)
	if err != nil {
		u.log.Warnf("Failed to find fcm token: %+v", err)
		return false, err
	}

	token := &entity.FCMToken{
		DeviceID: deviceID,
		Token:    strings.TrimSpace(req.FCMToken),
	}
	if err := u.fcmTokenRepo.Upsert(u.db, token); err != nil {
		u.log.Warnf("Failed to register fcm token: %+v", err)
		return false, err
	}

	return existing == nil, nil
}

func (u *deviceUsecase) SubscribeDoctor(ctx context.Context, req *dto.DoctorSubscriptionRequest) (bool, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	doctorName := strings.TrimSpace(req.DoctorName)

	existing, err := u.doctorSubscriptionRepo.FindByDeviceAndDoctor(u.db, deviceID, doctorName)
	if err != nil {
		u.log.Warnf("Failed to find doctor subscription: %+v", err)
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	subscription := &entity.DoctorSubscription{
		DeviceID:   deviceID,
		DoctorName: doctorName,
	}
	if err := u.doctorSubscriptionRepo.Create(u.db, subscription); err != nil {
		u.log.Warnf("Failed to create doctor subscription: %+v", err)
		return false, err
	}
	return true, nil
}

func (u *deviceUsecase) UnsubscribeDoctor(ctx context.Context, req *dto.DoctorSubscriptionRequest) error {
	affected, err := u.doctorSubscriptionRepo.Delete(u.db, strings.TrimSpace(req.DeviceID), strings.TrimSpace(req.DoctorName))
	if err != nil {
		u.log.Warnf("Failed to delete doctor subscription: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrDoctorSubscriptionNotFound
	}
	return nil
}

func (u *deviceUsecase) GetDeviceSubscriptions(ctx context.Context, deviceID string) (*dto.DeviceSubscriptionsResponse, error) {
	subscriptions, err := u.doctorSubscriptionRepo.FindByDevice(u.db, deviceID)
	if err != nil {
		u.log.Warnf("Failed to find doctor subscriptions: %+v", err)
		return nil, err
	}

	doctors := make([]string, len(subscriptions))
	for i, sub := range subscriptions {
		doctors[i] = sub.DoctorName
	}

	return &dto.DeviceSubscriptionsResponse{
		DeviceID:          deviceID,
		SubscribedDoctors: doctors,
		Count:             len(doctors),
	}, nil
}
