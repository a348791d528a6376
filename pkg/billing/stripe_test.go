package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"herotime/internal/config"
	"herotime/pkg/utils"
)

const testWebhookSecret = "whsec_test"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

func TestParseWebhookCheckoutCompleted(t *testing.T) {
	c := NewStripeClient(config.StripeConfig{WebhookSecret: testWebhookSecret})

	header, body := signed(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"customer": "cus_1",
			"subscription": "sub_1",
			"metadata": {"userId": "user-1"}
		}}
	}`)

	event, err := c.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cus_1", event.CustomerID)
	assert.Equal(t, "sub_1", event.SubscriptionID)
	assert.Equal(t, "user-1", event.UserID)
}

func TestParseWebhookInvoicePaid(t *testing.T) {
	c := NewStripeClient(config.StripeConfig{WebhookSecret: testWebhookSecret})

	header, body := signed(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "invoice.paid",
		"data": {"object": {
			"id": "in_1",
			"object": "invoice",
			"customer": "cus_1",
			"subscription": "sub_1",
			"billing_reason": "subscription_cycle"
		}}
	}`)

	event, err := c.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, EventInvoicePaid, event.Type)
	assert.Equal(t, BillingReasonSubscriptionCycle, event.BillingReason)
	assert.Equal(t, "cus_1", event.CustomerID)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	c := NewStripeClient(config.StripeConfig{WebhookSecret: testWebhookSecret})

	_, err := c.ParseWebhook([]byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, utils.ErrInvalidWebhook)
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewStripeClient(config.StripeConfig{})

	_, err := c.ActiveSubscription(context.Background(), "cus_1")
	assert.ErrorIs(t, err, utils.ErrProviderNotConfigured)

	_, err = c.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, utils.ErrProviderNotConfigured)

	_, err = c.ParseWebhook([]byte("{}"), "sig")
	assert.ErrorIs(t, err, utils.ErrProviderNotConfigured)
}

func TestFromStripe(t *testing.T) {
	sub := fromStripe(&stripe.Subscription{
		ID:                "sub_1",
		Status:            stripe.SubscriptionStatusActive,
		CancelAtPeriodEnd: true,
		CancelAt:          1700000000,
		CurrentPeriodEnd:  1700000500,
		Customer:          &stripe.Customer{ID: "cus_1"},
		Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
			{ID: "si_1", Price: &stripe.Price{ID: "price_pro"}},
		}},
	})

	assert.Equal(t, &Subscription{
		ID:                "sub_1",
		CustomerID:        "cus_1",
		Status:            "active",
		CancelAtPeriodEnd: true,
		CancelAt:          1700000000,
		CurrentPeriodEnd:  1700000500,
		ItemID:            "si_1",
		PriceID:           "price_pro",
	}, sub)
	assert.Nil(t, fromStripe(nil))
}

func TestWrapErrorKinds(t *testing.T) {
	err := wrapError("update", &stripe.Error{HTTPStatusCode: 402, Msg: "card declined"})

	var providerErr *utils.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, utils.ProviderPaymentRequired, providerErr.Kind)
	assert.Contains(t, providerErr.Detail, "card declined")

	assert.Equal(t, utils.ProviderRateLimited, kindForStatus(429))
	assert.Equal(t, utils.ProviderGeneric, kindForStatus(500))
}
