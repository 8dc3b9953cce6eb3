package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Trucks []TruckSubscription `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// TruckSubscription links a push subscription to one truck it follows.
type TruckSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	TruckID   int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}
