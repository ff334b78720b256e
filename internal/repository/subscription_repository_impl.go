package repository

import (
	"errors"

	"doctor-duty-notifier/internal/domain/entity"
	domainRepo "doctor-duty-notifier/internal/domain/repository"

	"gorm.io/gorm"
)

type subscriptionRepository struct{}

func NewSubscriptionRepository() domainRepo.SubscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) Create(db *gorm.DB, subscription *entity.Subscription) error {
	return db.Create(subscription).Error
}

func (r *subscriptionRepository) Update(db *gorm.DB, subscription *entity.Subscription) error {
	return db.Save(subscription).Error
}

func (r *subscriptionRepository) FindByID(db *gorm.DB, id int) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := db.Where("id = ?", id).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) FindByEmail(db *gorm.DB, email string) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := db.Where("email = ?", email).Order("id DESC").First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) FindActive(db *gorm.DB) ([]entity.Subscription, error) {
	var subscriptions []entity.Subscription
	err := db.Where("is_active = ?", true).Order("id ASC").Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *subscriptionRepository) FindActiveByEmail(db *gorm.DB, email string) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := db.Where("email = ? AND is_active = ?", email, true).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) FindActiveByEndpoint(db *gorm.DB, endpoint string) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := db.Where("push_subscription ->> 'endpoint' = ? AND is_active = ?", endpoint, true).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) Deactivate(db *gorm.DB, id int) error {
	return db.Model(&entity.Subscription{}).Where("id = ?", id).Update("is_active", false).Error
}
