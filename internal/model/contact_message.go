package model

import "time"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:128;not null"`
	Email     string    `gorm:"size:256;not null"`
	Message   string    `gorm:"not null"`
	RemoteIP  string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"not null"`
}
