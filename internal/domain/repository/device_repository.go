package repository

import (
	"doctor-duty-notifier/internal/domain/entity"

	"gorm.io/gorm"
)

type FCMTokenRepository interface {
	// Upsert inserts the token or replaces the one stored for the same device.
	Upsert(db *gorm.DB, token *entity.FCMToken) error
	FindByDeviceID(db *gorm.DB, deviceID string) (*entity.FCMToken, error)
	FindByDeviceIDs(db *gorm.DB, deviceIDs []string) ([]entity.FCMToken, error)
}

type DoctorSubscriptionRepository interface {
	Create(db *gorm.DB, subscription *entity.DoctorSubscription) error
	FindByDeviceAndDoctor(db *gorm.DB, deviceID, doctorName string) (*entity.DoctorSubscription, error)
	FindByDevice(db *gorm.DB, deviceID string) ([]entity.DoctorSubscription, error)
	FindDeviceIDsByDoctor(db *gorm.DB, doctorName string) ([]string, error)
	Delete(db *gorm.DB, deviceID, doctorName string) (int64, error)
}
