package auth

import "time"

// User represents an account with its subscription state.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Company            string     `json:"company,omitempty"`
	PasswordHash       string     `json:"-"`
	Plan               string     `json:"plan"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	SubscriptionEnd    *time.Time `json:"subscriptionEnd,omitempty"`
	PaymentID          string     `json:"paymentId,omitempty"`
	IsActive           bool       `json:"-"`
	CreatedAt          time.Time  `json:"-"`
	UpdatedAt          time.Time  `json:"-"`
}
