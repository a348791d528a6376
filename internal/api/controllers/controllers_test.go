package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herotime/internal/models/request_models"
	"herotime/internal/models/response_models"
	"herotime/internal/services"
	"herotime/pkg/middleware"
	"herotime/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status    string          `json:"status"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Details   string          `json:"details"`
	Data      json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// asUser stands in for the JWT middleware.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyUserEmail, userID+"@example.com")
		c.Next()
	}
}

type stubGenerations struct {
	services.GenerationService

	requestErr error
	page       int
	limit      int
	deleted    string
}

func (s *stubGenerations) RequestGeneration(_ context.Context, userID string, req request_models.GenerateImageRequest) (*services.GenerationOutcome, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return &services.GenerationOutcome{Result: response_models.GenerateImageResponse{
		GenerationID: "gen-1",
		ImageURL:     "https://store.example/out.png",
		Output:       "https://store.example/out.png",
		ReplicateURL: "https://replicate.delivery/out.png",
	}}, nil
}

func (s *stubGenerations) ListGenerations(_ context.Context, _ string, page, limit int) (*response_models.GenerationListResponse, error) {
	s.page, s.limit = page, limit
	return &response_models.GenerationListResponse{
		Generations: []response_models.GenerationResponse{},
		Pagination:  response_models.Pagination{Page: page, Limit: limit},
	}, nil
}

func (s *stubGenerations) DeleteGenerationWithAssets(_ context.Context, _ string, id string) error {
	s.deleted = id
	if id == "missing" {
		return utils.ErrGenerationNotFound
	}
	return nil
}

func generationRouter(svc services.GenerationService, userID string) *gin.Engine {
	ctrl := NewGenerationController(svc)
	r := gin.New()
	r.Use(middleware.ErrorDetails(false))
	if userID != "" {
		r.Use(asUser(userID))
	}
	r.POST("/api/generate-image", ctrl.GenerateImage)
	r.GET("/api/generations", ctrl.ListGenerations)
	r.POST("/api/delete-generation", ctrl.DeleteGenerationWithAssets)
	return r
}

func TestGenerateImageSuccess(t *testing.T) {
	r := generationRouter(&stubGenerations{}, "user-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-image",
		strings.NewReader(`{"uploadedImage":"https://store.example/src.png"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "success", env.Status)
	assert.JSONEq(t, `{
		"generationId": "gen-1",
		"imageUrl": "https://store.example/out.png",
		"output": "https://store.example/out.png",
		"replicateUrl": "https://replicate.delivery/out.png"
	}`, string(env.Data))
}

func TestGenerateImageErrors(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		status    int
		errorCode string
	}{
		{"quota", utils.ErrQuotaExceeded, http.StatusForbidden, "LIMIT_EXCEEDED"},
		{"missing image", utils.ErrMissingUploadedImage, http.StatusBadRequest, ""},
		{"rate limited", &utils.ProviderError{Kind: utils.ProviderRateLimited, Message: "Too many requests"}, http.StatusTooManyRequests, "rate_limited"},
		{"timeout", &utils.ProviderError{Kind: utils.ProviderTimeout, Message: "Request timeout"}, http.StatusRequestTimeout, "timeout"},
		{"payment", &utils.ProviderError{Kind: utils.ProviderPaymentRequired, Message: "Top up"}, http.StatusPaymentRequired, "payment_required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := generationRouter(&stubGenerations{requestErr: tc.err}, "user-1")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-image", strings.NewReader(`{}`)))

			assert.Equal(t, tc.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tc.errorCode, env.ErrorCode)
			assert.Empty(t, env.Details)
		})
	}
}

func TestGenerateImageRequiresUser(t *testing.T) {
	r := generationRouter(&stubGenerations{}, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-image", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListGenerationsDefaults(t *testing.T) {
	svc := &stubGenerations{}
	r := generationRouter(svc, "user-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.page)
	assert.Equal(t, 12, svc.limit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations?page=3&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.page)
	assert.Equal(t, 5, svc.limit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations?page=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteGenerationWithAssets(t *testing.T) {
	svc := &stubGenerations{}
	r := generationRouter(svc, "user-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/delete-generation", strings.NewReader(`{"generationId":"gen-1"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gen-1", svc.deleted)
	assert.JSONEq(t, `{"success":true}`, string(decode(t, w).Data))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/delete-generation", strings.NewReader(`{"generationId":"missing"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type stubSubscriptions struct {
	services.SubscriptionService

	payload   []byte
	signature string
	origin    string
	target    string
}

func (s *stubSubscriptions) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.payload, s.signature = payload, signature
	if signature != "t=1,v1=ok" {
		return utils.ErrInvalidWebhook
	}
	return nil
}

func (s *stubSubscriptions) ChangePlan(_ context.Context, _, _, target, origin string) (string, error) {
	s.target, s.origin = target, origin
	return origin + "/settings?updated=true", nil
}

func (s *stubSubscriptions) CancelAtPeriodEnd(context.Context, string) (*response_models.CancelSubscriptionResponse, error) {
	return nil, utils.ErrNoActiveSubscription
}

func (s *stubSubscriptions) Reactivate(context.Context, string) (*response_models.ReactivateSubscriptionResponse, error) {
	return nil, utils.ErrSubscriptionNotFound
}

func subscriptionRouter(svc services.SubscriptionService) *gin.Engine {
	ctrl := NewSubscriptionController(svc)
	r := gin.New()
	r.POST("/api/stripe/webhook", ctrl.HandleWebhook)

	protected := r.Group("/api/stripe", asUser("user-1"))
	protected.POST("/create-checkout-session", ctrl.CreateCheckoutSession)
	protected.POST("/cancel-subscription", ctrl.CancelSubscription)
	protected.POST("/reactivate-subscription", ctrl.ReactivateSubscription)
	return r
}

func TestWebhookPassesRawBodyAndSignature(t *testing.T) {
	svc := &stubSubscriptions{}
	r := subscriptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"id":"evt_1"}`, string(svc.payload))
	assert.JSONEq(t, `{"received":true}`, string(decode(t, w).Data))

	req = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsOversizedBody(t *testing.T) {
	svc := &stubSubscriptions{}
	r := subscriptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(strings.Repeat("x", maxWebhookBytes+1)))
	req.Header.Set("Stripe-Signature", "t=1,v1=ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.payload)
}

func TestCreateCheckoutSessionUsesOrigin(t *testing.T) {
	svc := &stubSubscriptions{}
	r := subscriptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/create-checkout-session", strings.NewReader(`{"plan":"premium"}`))
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "premium", svc.target)
	assert.Equal(t, "https://app.example", svc.origin)
	assert.JSONEq(t, `{"url":"https://app.example/settings?updated=true"}`, string(decode(t, w).Data))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stripe/create-checkout-session", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionErrorStatuses(t *testing.T) {
	r := subscriptionRouter(&stubSubscriptions{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stripe/cancel-subscription", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No active subscription", decode(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stripe/reactivate-subscription", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
