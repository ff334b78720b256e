package entity

import "time"

// Subscription is a broadcast subscriber reached by email and/or web push.
type Subscription struct {
	ID               int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email            *string   `gorm:"type:varchar(255);index" json:"email,omitempty"`
	PushSubscription JSON      `gorm:"type:jsonb" json:"push_subscription,omitempty"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// HasPush reports whether the subscriber registered a browser endpoint.
func (s *Subscription) HasPush() bool {
	return len(s.PushSubscription) > 0
}
