package response_models

import "time"

type UserSubscription struct {
	Plan                 string     `json:"plan"`
	ScheduledPlan        *string    `json:"scheduledPlan"`
	GenerationsUsed      int        `json:"generationsUsed"`
	GenerationsLimit     int        `json:"generationsLimit"`
	StripeCustomerID     *string    `json:"stripeCustomerId"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
	SubscriptionStatus   *string    `json:"subscriptionStatus"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
}

type SessionURLResponse struct {
	URL string `json:"url"`
}

type CancelSubscriptionResponse struct {
	CancelsAt *time.Time `json:"cancelsAt"`
}

type SubscriptionState struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
}

type ReactivateSubscriptionResponse struct {
	Subscription SubscriptionState `json:"subscription"`
}
