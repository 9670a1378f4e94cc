package models

import "time"

// Customer is the shopper profile attached one-to-one to a User. Orders are
// owned by a Customer.
type Customer struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Name       string    `json:"name" gorm:"type:varchar(100)"`
	Mobile     string    `json:"mobile,omitempty" gorm:"type:varchar(15)"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty" gorm:"type:varchar(50)"`
	State      string    `json:"state,omitempty" gorm:"type:varchar(50)"`
	PostalCode string    `json:"postal_code,omitempty" gorm:"type:varchar(10)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
