package repository

import (
	"doctor-duty-notifier/internal/domain/entity"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(db *gorm.DB, subscription *entity.Subscription) error
	Update(db *gorm.DB, subscription *entity.Subscription) error
	FindByID(db *gorm.DB, id int) (*entity.Subscription, error)
	// FindByEmail returns the most recent subscription for email, active or not.
	FindByEmail(db *gorm.DB, email string) (*entity.Subscription, error)
	FindActive(db *gorm.DB) ([]entity.Subscription, error)
	FindActiveByEmail(db *gorm.DB, email string) (*entity.Subscription, error)
	FindActiveByEndpoint(db *gorm.DB, endpoint string) (*entity.Subscription, error)
	Deactivate(db *gorm.DB, id int) error
}
