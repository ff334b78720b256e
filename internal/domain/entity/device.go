package entity

import "time"

// FCMToken binds a mobile device to its current Firebase registration token.
type FCMToken struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"device_id"`
	Token     string    `gorm:"column:fcm_token;type:text;not null" json:"fcm_token"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FCMToken) TableName() string {
	return "fcm_tokens"
}

// DoctorSubscription asks for alerts about one doctor on one device.
type DoctorSubscription struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID   string    `gorm:"type:varchar(255);not null;index" json:"device_id"`
	DoctorName string    `gorm:"type:varchar(255);not null;index" json:"doctor_name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DoctorSubscription) TableName() string {
	return "doctor_subscriptions"
}
