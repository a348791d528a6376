package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"herotime/internal/config"
	"herotime/internal/models/db_models"
	"herotime/internal/models/response_models"
	"herotime/internal/repositories"
	"herotime/pkg/billing"
	mem "herotime/pkg/memcache"
	"herotime/pkg/utils"
)

const (
	checkoutSuccessPath = "/settings?session=success"
	checkoutCancelPath  = "/pricing?session=canceled"
	settingsPath        = "/settings"
	updatedPath         = "/settings?updated=true"
	reactivatedPath     = "/settings?updated=true&reactivated=true"
	downgradedPath      = "/settings?updated=true&downgraded=true"
)

// SubscriptionService reconciles the local subscription snapshot against the billing
// provider. Every mutation for a user is serialized on that user's lock.
type SubscriptionService interface {
	// Sync pulls the provider state into the local row and returns the snapshot.
	Sync(ctx context.Context, userID, email string) (*response_models.UserSubscription, error)
	GetSubscription(ctx context.Context, userID string) (*response_models.UserSubscription, error)
	CancelAtPeriodEnd(ctx context.Context, userID string) (*response_models.CancelSubscriptionResponse, error)
	Reactivate(ctx context.Context, userID string) (*response_models.ReactivateSubscriptionResponse, error)
	// ChangePlan returns the URL the client should navigate to next: a checkout page
	// for new subscribers, a settings page once an existing subscription was changed.
	ChangePlan(ctx context.Context, userID, email, target, origin string) (string, error)
	CreatePortalSession(ctx context.Context, userID, origin string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// RollOverPeriod starts a new billing period: usage back to zero, scheduled plan applied.
	RollOverPeriod(ctx context.Context, userID string) (*response_models.UserSubscription, error)
}

type subscriptionService struct {
	users   repositories.UserRepository
	billing billing.Client
	plans   PlanServiceInterface
	locks   *mem.UserLocks
	appURL  string
}

func NewSubscriptionService(
	users repositories.UserRepository,
	billingClient billing.Client,
	plans PlanServiceInterface,
	locks *mem.UserLocks,
	cfg *config.Config,
) SubscriptionService {
	return &subscriptionService{
		users:   users,
		billing: billingClient,
		plans:   plans,
		locks:   locks,
		appURL:  strings.TrimRight(cfg.AppURL, "/"),
	}
}

func (s *subscriptionService) Sync(ctx context.Context, userID, email string) (*response_models.UserSubscription, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.sync(ctx, userID, email)
}

// sync expects the caller to hold the user's lock.
func (s *subscriptionService) sync(ctx context.Context, userID, email string) (*response_models.UserSubscription, error) {
	user, created, err := s.users.EnsureUser(ctx, userID, email)
	if err != nil {
		return nil, dbError("ensure user", err)
	}
	if created || !user.HasCustomer() {
		return toUserSubscription(user), nil
	}

	sub, err := s.billing.ActiveSubscription(ctx, *user.StripeCustomerID)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"user_id": userID, "customer_id": *user.StripeCustomerID})

	if sub == nil {
		if user.Plan == db_models.PlanFree {
			return toUserSubscription(user), nil
		}
		logger.WithField("plan", user.Plan).Info("no active subscription, reverting to free plan")
		err = s.users.Update(ctx, userID, map[string]interface{}{
			"plan":                   db_models.PlanFree,
			"generations_limit":      db_models.PlanFree.GenerationsLimit(),
			"subscription_status":    db_models.SubStatusCanceled,
			"stripe_subscription_id": nil,
			"scheduled_plan":         nil,
		})
		if err != nil {
			return nil, dbError("revert to free plan", err)
		}
		return s.snapshot(ctx, userID)
	}

	status := sub.Status
	if sub.CancelAtPeriodEnd && status == db_models.SubStatusActive {
		status = db_models.SubStatusCanceling
	}
	canceling := status == db_models.SubStatusCanceling

	var cancelAt int64
	if canceling {
		cancelAt = sub.CancelAt
	}
	periodEnd := utils.TimeFromUnixSeconds(utils.FirstNonZero(cancelAt, sub.ItemPeriodEnd, sub.CurrentPeriodEnd))

	fields := map[string]interface{}{
		"stripe_subscription_id": sub.ID,
		"subscription_status":    status,
		"current_period_end":     periodEnd,
	}

	// A scheduled downgrade or a pending cancellation keeps the plan the user paid for
	// until the period rolls over, even though the provider may already report the new price.
	if user.ScheduledPlan != nil || canceling {
		if canceling {
			fields["scheduled_plan"] = nil
		}
	} else {
		plan := s.plans.PlanForPrice(sub.PriceID)
		fields["plan"] = plan
		fields["generations_limit"] = plan.GenerationsLimit()
	}

	if err := s.users.Update(ctx, userID, fields); err != nil {
		return nil, dbError("store subscription", err)
	}
	return s.snapshot(ctx, userID)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, userID string) (*response_models.UserSubscription, error) {
	return s.snapshot(ctx, userID)
}

func (s *subscriptionService) CancelAtPeriodEnd(ctx context.Context, userID string) (*response_models.CancelSubscriptionResponse, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError("find user", err)
	}
	if user == nil || !user.HasSubscription() {
		return nil, utils.ErrNoActiveSubscription
	}
	subID := *user.StripeSubscriptionID

	// the provider already bills the scheduled plan; put the paid one back before canceling
	if user.ScheduledPlan != nil {
		priceID, err := s.plans.PriceID(user.Plan)
		if err != nil {
			if errors.Is(err, utils.ErrInvalidPlan) {
				return nil, fmt.Errorf("%w: current plan %s", utils.ErrPlanPriceNotConfigured, user.Plan)
			}
			return nil, err
		}
		current, err := s.billing.GetSubscription(ctx, subID)
		if err != nil {
			return nil, err
		}
		if _, err := s.billing.ChangePrice(ctx, subID, current.ItemID, priceID, billing.ProrationNone, false); err != nil {
			return nil, err
		}
	}

	canceled, err := s.billing.SetCancelAtPeriodEnd(ctx, subID, true)
	if err != nil {
		return nil, err
	}

	cancelsAt := utils.TimeFromUnixSeconds(utils.FirstNonZero(canceled.CancelAt, canceled.ItemPeriodEnd, canceled.CurrentPeriodEnd))
	if cancelsAt == nil {
		cancelsAt = user.CurrentPeriodEnd
	}

	err = s.users.Update(ctx, userID, map[string]interface{}{
		"subscription_status": db_models.SubStatusCanceling,
		"current_period_end":  cancelsAt,
		"scheduled_plan":      nil,
	})
	if err != nil {
		return nil, dbError("mark canceling", err)
	}

	log.WithFields(log.Fields{"user_id": userID, "subscription_id": subID}).Info("subscription set to cancel at period end")
	return &response_models.CancelSubscriptionResponse{CancelsAt: cancelsAt}, nil
}

func (s *subscriptionService) Reactivate(ctx context.Context, userID string) (*response_models.ReactivateSubscriptionResponse, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError("find user", err)
	}
	if user == nil || !user.HasSubscription() {
		return nil, utils.ErrSubscriptionNotFound
	}
	if !user.IsCanceling() {
		return nil, utils.ErrSubscriptionNotCanceled
	}

	sub, err := s.billing.SetCancelAtPeriodEnd(ctx, *user.StripeSubscriptionID, false)
	if err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, userID, map[string]interface{}{"subscription_status": db_models.SubStatusActive}); err != nil {
		return nil, dbError("mark active", err)
	}

	return &response_models.ReactivateSubscriptionResponse{
		Subscription: response_models.SubscriptionState{
			ID:               sub.ID,
			Status:           sub.Status,
			CurrentPeriodEnd: utils.TimeFromUnixSeconds(utils.FirstNonZero(sub.ItemPeriodEnd, sub.CurrentPeriodEnd)),
		},
	}, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, userID, email, target, origin string) (string, error) {
	plan, ok := db_models.ParsePlan(target)
	if !ok || !plan.Paid() {
		return "", utils.ErrInvalidPlan
	}
	priceID, err := s.plans.PriceID(plan)
	if err != nil {
		return "", err
	}
	origin = s.origin(origin)

	unlock := s.locks.Lock(userID)
	defer unlock()

	user, _, err := s.users.EnsureUser(ctx, userID, email)
	if err != nil {
		return "", dbError("ensure user", err)
	}

	customerID, err := s.ensureCustomer(ctx, user, email)
	if err != nil {
		return "", err
	}

	active, err := s.billing.ActiveSubscription(ctx, customerID)
	if err != nil {
		return "", err
	}
	if active == nil {
		return s.billing.CreateCheckoutSession(ctx, billing.CheckoutRequest{
			CustomerID: customerID,
			UserID:     userID,
			PriceID:    priceID,
			SuccessURL: origin + checkoutSuccessPath,
			CancelURL:  origin + checkoutCancelPath,
		})
	}

	logger := log.WithFields(log.Fields{
		"user_id":         userID,
		"subscription_id": active.ID,
		"from":            user.Plan,
		"to":              plan,
	})
	canceling := user.IsCanceling()

	if plan == user.Plan {
		switch {
		case canceling:
			if _, err := s.billing.SetCancelAtPeriodEnd(ctx, active.ID, false); err != nil {
				return "", err
			}
			if err := s.markActive(ctx, userID, nil); err != nil {
				return "", err
			}
			logger.Info("canceled subscription reactivated")
			return origin + reactivatedPath, nil
		case user.ScheduledPlan != nil:
			if _, err := s.billing.ChangePrice(ctx, active.ID, active.ItemID, priceID, billing.ProrationNone, false); err != nil {
				return "", err
			}
			if err := s.markActive(ctx, userID, nil); err != nil {
				return "", err
			}
			logger.Info("scheduled downgrade withdrawn")
		}
		return origin + updatedPath, nil
	}

	if canceling {
		if _, err := s.billing.SetCancelAtPeriodEnd(ctx, active.ID, false); err != nil {
			return "", err
		}
	}

	if plan.Rank() < user.Plan.Rank() {
		if _, err := s.billing.ChangePrice(ctx, active.ID, active.ItemID, priceID, billing.ProrationNone, false); err != nil {
			return "", err
		}
		if err := s.markActive(ctx, userID, &plan); err != nil {
			return "", err
		}
		logger.Info("downgrade scheduled for period end")
		return origin + downgradedPath, nil
	}

	if _, err := s.billing.ChangePrice(ctx, active.ID, active.ItemID, priceID, billing.ProrationAlwaysInvoice, true); err != nil {
		return "", err
	}
	if err := s.markActive(ctx, userID, nil); err != nil {
		return "", err
	}
	if _, err := s.sync(ctx, userID, email); err != nil {
		logger.WithError(err).Warn("sync after upgrade failed")
	}
	logger.Info("subscription upgraded")
	return origin + updatedPath, nil
}

func (s *subscriptionService) CreatePortalSession(ctx context.Context, userID, origin string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", dbError("find user", err)
	}
	if user == nil || !user.HasCustomer() {
		return "", utils.ErrNoBillingCustomer
	}
	return s.billing.CreatePortalSession(ctx, *user.StripeCustomerID, s.origin(origin)+settingsPath)
}

func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.billing.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	logger := log.WithFields(log.Fields{
		"event_id":    event.ID,
		"event_type":  event.Type,
		"customer_id": event.CustomerID,
	})

	switch event.Type {
	case billing.EventCheckoutCompleted:
		return s.completeCheckout(ctx, logger, event)
	case billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		user, err := s.userForEvent(ctx, logger, event)
		if err != nil || user == nil {
			return err
		}
		unlock := s.locks.Lock(user.ID)
		defer unlock()

		_, err = s.sync(ctx, user.ID, user.Email)
		return err
	case billing.EventInvoicePaid:
		if event.BillingReason != billing.BillingReasonSubscriptionCycle {
			logger.WithField("billing_reason", event.BillingReason).Debug("invoice ignored")
			return nil
		}
		user, err := s.userForEvent(ctx, logger, event)
		if err != nil || user == nil {
			return err
		}
		unlock := s.locks.Lock(user.ID)
		defer unlock()

		if _, err := s.rollOver(ctx, user.ID); err != nil {
			return err
		}
		_, err = s.sync(ctx, user.ID, user.Email)
		return err
	default:
		logger.Debug("webhook event ignored")
		return nil
	}
}

func (s *subscriptionService) completeCheckout(ctx context.Context, logger *log.Entry, event *billing.Event) error {
	if event.UserID == "" || event.CustomerID == "" {
		logger.Warn("checkout completed without user or customer")
		return nil
	}

	unlock := s.locks.Lock(event.UserID)
	defer unlock()

	user, _, err := s.users.EnsureUser(ctx, event.UserID, "")
	if err != nil {
		return dbError("ensure user", err)
	}
	if !user.HasCustomer() || *user.StripeCustomerID != event.CustomerID {
		if err := s.users.Update(ctx, user.ID, map[string]interface{}{"stripe_customer_id": event.CustomerID}); err != nil {
			return dbError("store customer", err)
		}
	}

	if _, err := s.sync(ctx, user.ID, user.Email); err != nil {
		return err
	}
	logger.WithField("user_id", user.ID).Info("checkout completed")
	return nil
}

func (s *subscriptionService) userForEvent(ctx context.Context, logger *log.Entry, event *billing.Event) (*db_models.User, error) {
	if event.CustomerID == "" {
		logger.Warn("webhook event without customer")
		return nil, nil
	}
	user, err := s.users.FindByStripeCustomerID(ctx, event.CustomerID)
	if err != nil {
		return nil, dbError("find user by customer", err)
	}
	if user == nil {
		logger.Warn("no user for billing customer")
	}
	return user, nil
}

func (s *subscriptionService) RollOverPeriod(ctx context.Context, userID string) (*response_models.UserSubscription, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.rollOver(ctx, userID)
}

func (s *subscriptionService) rollOver(ctx context.Context, userID string) (*response_models.UserSubscription, error) {
	user, err := s.users.RollOverPeriod(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, dbError("roll over period", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "plan": user.Plan}).Info("billing period rolled over")
	return toUserSubscription(user), nil
}

func (s *subscriptionService) ensureCustomer(ctx context.Context, user *db_models.User, email string) (string, error) {
	if user.HasCustomer() {
		return *user.StripeCustomerID, nil
	}
	if email == "" {
		email = user.Email
	}

	customerID, err := s.billing.CreateCustomer(ctx, email, user.ID)
	if err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"stripe_customer_id": customerID}); err != nil {
		return "", dbError("store customer", err)
	}
	return customerID, nil
}

func (s *subscriptionService) markActive(ctx context.Context, userID string, scheduled *db_models.Plan) error {
	fields := map[string]interface{}{
		"subscription_status": db_models.SubStatusActive,
		"scheduled_plan":      nil,
	}
	if scheduled != nil {
		fields["scheduled_plan"] = *scheduled
	}
	if err := s.users.Update(ctx, userID, fields); err != nil {
		return dbError("update subscription", err)
	}
	return nil
}

func (s *subscriptionService) snapshot(ctx context.Context, userID string) (*response_models.UserSubscription, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError("find user", err)
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	return toUserSubscription(user), nil
}

func (s *subscriptionService) origin(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return s.appURL
	}
	return origin
}

func toUserSubscription(user *db_models.User) *response_models.UserSubscription {
	out := &response_models.UserSubscription{
		Plan:                 string(user.Plan),
		GenerationsUsed:      user.GenerationsUsed,
		GenerationsLimit:     user.GenerationsLimit,
		StripeCustomerID:     user.StripeCustomerID,
		StripeSubscriptionID: user.StripeSubscriptionID,
		SubscriptionStatus:   user.SubscriptionStatus,
	}
	if user.ScheduledPlan != nil {
		scheduled := string(*user.ScheduledPlan)
		out.ScheduledPlan = &scheduled
	}
	if user.CurrentPeriodEnd != nil {
		end := user.CurrentPeriodEnd.UTC().Truncate(time.Second)
		out.CurrentPeriodEnd = &end
	}
	return out
}

func dbError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", utils.ErrDatabaseError, op, err)
}
