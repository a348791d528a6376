package request_models

type CheckoutSessionRequest struct {
	Plan string `json:"plan" binding:"required"`
}
