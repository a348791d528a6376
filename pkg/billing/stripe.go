package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"herotime/internal/config"
	"herotime/pkg/utils"
)

type Proration string

const (
	ProrationNone          Proration = "none"
	ProrationAlwaysInvoice Proration = "always_invoice"
	ProrationCreate        Proration = "create_prorations"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.paid"

	BillingReasonSubscriptionCycle = "subscription_cycle"

	metadataUserID = "userId"
)

// Subscription is the provider subscription reduced to what reconciliation reads.
// Timestamps are unix seconds; 0 means the provider did not report one.
type Subscription struct {
	ID                string
	CustomerID        string
	Status            string
	CancelAtPeriodEnd bool
	CancelAt          int64
	CurrentPeriodEnd  int64
	ItemID            string
	PriceID           string
	ItemPeriodEnd     int64
}

type CheckoutRequest struct {
	CustomerID string
	UserID     string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Event is a verified webhook event.
type Event struct {
	ID             string
	Type           string
	CustomerID     string
	UserID         string
	SubscriptionID string
	BillingReason  string
}

type Client interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	// ActiveSubscription returns the customer's active subscription, or nil when there is none.
	ActiveSubscription(ctx context.Context, customerID string) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*Subscription, error)
	ChangePrice(ctx context.Context, subscriptionID, itemID, priceID string, proration Proration, resetAnchor bool) (*Subscription, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type stripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient builds the billing client on an explicit stripe client.API.
// Without a secret key every call fails with utils.ErrProviderNotConfigured.
func NewStripeClient(cfg config.StripeConfig) Client {
	c := &stripeClient{webhookSecret: cfg.WebhookSecret}
	if cfg.SecretKey != "" {
		c.api = &client.API{}
		c.api.Init(cfg.SecretKey, nil)
	}
	return c
}

func (s *stripeClient) ready() error {
	if s.api == nil {
		return fmt.Errorf("stripe: %w", utils.ErrProviderNotConfigured)
	}
	return nil
}

func (s *stripeClient) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{metadataUserID: userID},
	}
	params.Context = ctx

	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", wrapError("create customer", err)
	}
	return cust.ID, nil
}

func (s *stripeClient) ActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.Single = true

	iter := s.api.Subscriptions.List(params)
	if iter.Next() {
		return fromStripe(iter.Subscription()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("list subscriptions", err)
	}
	return nil, nil
}

func (s *stripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrapError("get subscription", err)
	}
	return fromStripe(sub), nil
}

func (s *stripeClient) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*Subscription, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(cancel)}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapError("update cancel_at_period_end", err)
	}
	return fromStripe(sub), nil
}

func (s *stripeClient) ChangePrice(ctx context.Context, subscriptionID, itemID, priceID string, proration Proration, resetAnchor bool) (*Subscription, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{ID: stripe.String(itemID), Price: stripe.String(priceID)},
		},
		ProrationBehavior: stripe.String(string(proration)),
	}
	if resetAnchor {
		params.BillingCycleAnchorNow = stripe.Bool(true)
	}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapError("change subscription price", err)
	}
	return fromStripe(sub), nil
}

func (s *stripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	metadata := map[string]string{metadataUserID: req.UserID}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:           stripe.String(req.CustomerID),
		ClientReferenceID:  stripe.String(req.UserID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{Metadata: metadata},
		SuccessURL:       stripe.String(req.SuccessURL),
		CancelURL:        stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, req.UserID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", wrapError("create checkout session", err)
	}
	return sess.URL, nil
}

func (s *stripeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", wrapError("create portal session", err)
	}
	return sess.URL, nil
}

func (s *stripeClient) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret: %w", utils.ErrProviderNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidWebhook, err)
	}
	return decodeEvent(event)
}

func decodeEvent(event stripe.Event) (*Event, error) {
	out := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", utils.ErrInvalidWebhook, err)
		}
		if sess.Customer != nil {
			out.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}
		out.UserID = sess.Metadata[metadataUserID]
		if out.UserID == "" {
			out.UserID = sess.ClientReferenceID
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", utils.ErrInvalidWebhook, err)
		}
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		out.UserID = sub.Metadata[metadataUserID]
	case EventInvoicePaid:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: invoice: %v", utils.ErrInvalidWebhook, err)
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
		out.BillingReason = string(inv.BillingReason)
	}
	return out, nil
}

func fromStripe(sub *stripe.Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CancelAt:          sub.CancelAt,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.ItemID = item.ID
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
	}
	return out
}

func wrapError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &utils.ProviderError{
			Kind:    kindForStatus(stripeErr.HTTPStatusCode),
			Message: "Billing provider error",
			Detail:  fmt.Sprintf("%s: %s", op, stripeErr.Msg),
			Err:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		kind := utils.ProviderNetwork
		if netErr.Timeout() {
			kind = utils.ProviderTimeout
		}
		return &utils.ProviderError{Kind: kind, Message: "Billing provider unreachable", Detail: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func kindForStatus(status int) utils.ProviderErrorKind {
	switch status {
	case 400, 404:
		return utils.ProviderBadRequest
	case 401, 403:
		return utils.ProviderUnauthorized
	case 402:
		return utils.ProviderPaymentRequired
	case 429:
		return utils.ProviderRateLimited
	default:
		return utils.ProviderGeneric
	}
}
