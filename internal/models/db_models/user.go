package db_models

import "time"

const (
	SubStatusActive    = "active"
	SubStatusCanceling = "canceling"
	SubStatusCanceled  = "canceled"
)

// User mirrors an auth-provider identity plus its billing and quota state.
type User struct {
	ID    string `gorm:"primaryKey;size:64"`
	Email string `gorm:"index"`

	Plan          Plan  `gorm:"size:16;not null;default:free"`
	ScheduledPlan *Plan `gorm:"size:16"` // downgrade applied at CurrentPeriodEnd

	GenerationsUsed  int `gorm:"not null;default:0"`
	GenerationsLimit int `gorm:"not null"`

	StripeCustomerID     *string `gorm:"uniqueIndex"`
	StripeSubscriptionID *string `gorm:"index"`
	SubscriptionStatus   *string
	CurrentPeriodEnd     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsCanceling() bool {
	return u.SubscriptionStatus != nil && *u.SubscriptionStatus == SubStatusCanceling
}

func (u *User) HasSubscription() bool {
	return u.StripeSubscriptionID != nil && *u.StripeSubscriptionID != ""
}

func (u *User) HasCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}
