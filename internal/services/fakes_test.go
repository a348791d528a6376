package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"herotime/internal/models/db_models"
	"herotime/internal/models/response_models"
	"herotime/pkg/billing"
	"herotime/pkg/inference"
	"herotime/pkg/storage"
	"herotime/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&db_models.User{}, &db_models.Generation{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// fakeBilling keeps one subscription in memory and records every mutating call.
type fakeBilling struct {
	mu sync.Mutex

	active     *billing.Subscription
	event      *billing.Event
	calls      []string
	checkout   billing.CheckoutRequest
	returnURL  string
	proration  billing.Proration
	resetCycle bool
}

func (f *fakeBilling) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBilling) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBilling) copyActive() *billing.Subscription {
	if f.active == nil {
		return nil
	}
	sub := *f.active
	return &sub
}

func (f *fakeBilling) CreateCustomer(_ context.Context, _, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_customer")
	return "cus_" + userID, nil
}

func (f *fakeBilling) ActiveSubscription(context.Context, string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyActive(), nil
}

func (f *fakeBilling) GetSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil || f.active.ID != id {
		return nil, &utils.ProviderError{Kind: utils.ProviderBadRequest, Message: "Billing provider error"}
	}
	return f.copyActive(), nil
}

func (f *fakeBilling) SetCancelAtPeriodEnd(_ context.Context, id string, cancel bool) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("cancel_at_period_end=%t", cancel))
	if f.active == nil || f.active.ID != id {
		return nil, errors.New("no such subscription")
	}
	f.active.CancelAtPeriodEnd = cancel
	f.active.CancelAt = 0
	if cancel {
		f.active.CancelAt = f.active.CurrentPeriodEnd
	}
	return f.copyActive(), nil
}

func (f *fakeBilling) ChangePrice(_ context.Context, id, itemID, priceID string, proration billing.Proration, resetAnchor bool) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("change_price=" + priceID)
	if f.active == nil || f.active.ID != id || f.active.ItemID != itemID {
		return nil, errors.New("no such subscription item")
	}
	f.active.PriceID = priceID
	f.proration = proration
	f.resetCycle = resetAnchor
	return f.copyActive(), nil
}

func (f *fakeBilling) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("checkout")
	f.checkout = req
	return "https://checkout.example/" + req.PriceID, nil
}

func (f *fakeBilling) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("portal")
	f.returnURL = returnURL
	return "https://portal.example/" + customerID, nil
}

func (f *fakeBilling) ParseWebhook(_ []byte, signature string) (*billing.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if signature != "valid" || f.event == nil {
		return nil, utils.ErrInvalidWebhook
	}
	event := *f.event
	return &event, nil
}

// fakeStorage is an in-memory object store.
type fakeStorage struct {
	mu sync.Mutex

	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
	listing   map[string][]storage.Entry
	lists     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, listing: map[string][]storage.Entry{}}
}

func (f *fakeStorage) Upload(_ context.Context, bucket, path string, data []byte, _ string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.objects[bucket+"/"+path] = data
	return &storage.Object{Path: path, URL: f.PublicURL(bucket, path)}, nil
}

func (f *fakeStorage) Delete(_ context.Context, bucket, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, bucket+"/"+path)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, bucket+"/"+path)
	return nil
}

func (f *fakeStorage) List(_ context.Context, bucket, prefix string) ([]storage.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.listing[bucket+"/"+strings.Trim(prefix, "/")], nil
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "https://store.example/storage/v1/object/public/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

func (f *fakeStorage) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// fakePredictor answers every prediction with a fixed output.
type fakePredictor struct {
	mu sync.Mutex

	submitErr   error
	waitErr     error
	downloadErr error
	output      inference.Output
	requests    []inference.Request
}

func (f *fakePredictor) Submit(_ context.Context, req inference.Request) (*inference.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &inference.Prediction{ID: "pred_1", Status: "starting"}, nil
}

func (f *fakePredictor) Wait(_ context.Context, p *inference.Prediction) (*inference.Prediction, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &inference.Prediction{ID: p.ID, Status: "succeeded", Output: f.output}, nil
}

func (f *fakePredictor) Download(context.Context, string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("generated-png"), nil
}

type fakeCatalog struct {
	templates map[string]response_models.Template
}

func (f *fakeCatalog) ListProps(context.Context) []response_models.PropCategory { return nil }

func (f *fakeCatalog) ListTemplates(context.Context) []response_models.TemplateCategory { return nil }

func (f *fakeCatalog) FindTemplate(_ context.Context, id string) (*response_models.Template, bool) {
	tmpl, ok := f.templates[id]
	if !ok {
		return nil, false
	}
	return &tmpl, true
}
