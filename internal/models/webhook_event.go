package models

import "time"

// ProcessedWebhookEvent records a gateway event id once it has been applied,
// so redelivered events are recognised.
type ProcessedWebhookEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(128)"`
	EventType   string    `gorm:"type:varchar(64);index"`
	OrderID     string    `gorm:"type:varchar(36);index"`
	ProcessedAt time.Time `gorm:"not null"`
}

// All returns every model managed by the schema migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Product{},
		&ProductVariant{},
		&CartLine{},
		&Coupon{},
		&OrderStatus{},
		&Order{},
		&OrderDetail{},
		&ProcessedWebhookEvent{},
	}
}
