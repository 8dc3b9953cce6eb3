package model

import (
	"time"
)

// TruckStatusOpen is the last status the watcher observed for a truck (hot table).
type TruckStatusOpen struct {
	TruckID      int64     `gorm:"primaryKey;autoIncrement:false"`
	ObservedAt   time.Time `gorm:"not null"`
	Label        string    `gorm:"size:32;not null"`
	OccurrenceID string    `gorm:"size:64;not null"`
}

// TruckStatusHistory is a status period that has ended (cold table).
type TruckStatusHistory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	TruckID      int64     `gorm:"not null;index"`
	ObservedAt   time.Time `gorm:"not null;index"` // when the change was observed
	Label        string    `gorm:"size:32;not null"`
	OccurrenceID string    `gorm:"size:64;not null"`
	PeriodStart  time.Time `gorm:"not null"`
	PeriodEnd    time.Time `gorm:"not null"`
}
