package repository

import (
	"errors"

	"doctor-duty-notifier/internal/domain/entity"
	domainRepo "doctor-duty-notifier/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fcmTokenRepository struct{}

func NewFCMTokenRepository() domainRepo.FCMTokenRepository {
	return &fcmTokenRepository{}
}

func (r *fcmTokenRepository) Upsert(db *gorm.DB, token *entity.FCMToken) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fcm_token", "updated_at"}),
	}).Create(token).Error
}

func (r *fcmTokenRepository) FindByDeviceID(db *gorm.DB, deviceID string) (*entity.FCMToken, error) {
	var token entity.FCMToken
	err := db.Where("device_id = ?", deviceID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *fcmTokenRepository) FindByDeviceIDs(db *gorm.DB, deviceIDs []string) ([]entity.FCMToken, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}
	var tokens []entity.FCMToken
	err := db.Where("device_id IN ?", deviceIDs).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

type doctorSubscriptionRepository struct{}

func NewDoctorSubscriptionRepository() domainRepo.DoctorSubscriptionRepository {
	return &doctorSubscriptionRepository{}
}

func (r *doctorSubscriptionRepository) Create(db *gorm.DB, subscription *entity.DoctorSubscription) error {
	return db.Create(subscription).Error
}

func (r *doctorSubscriptionRepository) FindByDeviceAndDoctor(db *gorm.DB, deviceID, doctorName string) (*entity.DoctorSubscription, error) {
	var subscription entity.DoctorSubscription
	err := db.Where("device_id = ? AND doctor_name = ?", deviceID, doctorName).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *doctorSubscriptionRepository) FindByDevice(db *gorm.DB, deviceID string) ([]entity.DoctorSubscription, error) {
	var subscriptions []entity.DoctorSubscription
	err := db.Where("device_id = ?", deviceID).Order("created_at ASC").Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// FindDeviceIDsByDoctor matches the doctor name case-insensitively.
func (r *doctorSubscriptionRepository) FindDeviceIDsByDoctor(db *gorm.DB, doctorName string) ([]string, error) {
	var deviceIDs []string
	err := db.Model(&entity.DoctorSubscription{}).
		Where("LOWER(doctor_name) = LOWER(?)", doctorName).
		Distinct().
		Pluck("device_id", &deviceIDs).Error
	if err != nil {
		return nil, err
	}
	return deviceIDs, nil
}

func (r *doctorSubscriptionRepository) Delete(db *gorm.DB, deviceID, doctorName string) (int64, error) {
	result := db.Where("device_id = ? AND doctor_name = ?", deviceID, doctorName).Delete(&entity.DoctorSubscription{})
	return result.RowsAffected, result.Error
}
