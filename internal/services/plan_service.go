package services

import (
	"fmt"

	"herotime/internal/config"
	"herotime/internal/models/db_models"
	"herotime/internal/models/response_models"
	"herotime/pkg/utils"
)

type planInfo struct {
	name        string
	price       float64
	features    []string
	highlighted bool
}

var planCatalog = map[db_models.Plan]planInfo{
	db_models.PlanFree: {
		name:  "Free",
		price: 0,
		features: []string{
			"Watermark on images",
			"1K quality",
			"Limited templates",
			"Community support",
			"Commercial usage rights",
		},
	},
	db_models.PlanPro: {
		name:        "Pro",
		price:       12.99,
		highlighted: true,
		features: []string{
			"No watermark",
			"1K, 2K quality",
			"All templates",
			"Priority support",
			"Commercial usage rights",
		},
	},
	db_models.PlanPremium: {
		name:  "Premium",
		price: 34.99,
		features: []string{
			"No watermark",
			"1K, 2K, 4K quality",
			"Custom dimensions (1024-4096px)",
			"All templates",
			"Custom templates",
			"Priority support",
			"Commercial usage rights",
		},
	},
}

var planOrder = []db_models.Plan{db_models.PlanFree, db_models.PlanPro, db_models.PlanPremium}

type PlanServiceInterface interface {
	ListPlans() []response_models.PlanResponse
	// PriceID returns the billing price configured for a paid plan.
	PriceID(plan db_models.Plan) (string, error)
	// PlanForPrice maps a billing price back to its plan; unknown prices are free.
	PlanForPrice(priceID string) db_models.Plan
}

func NewPlanService(cfg *config.Config) PlanServiceInterface {
	return &PlanService{
		prices: map[db_models.Plan]string{
			db_models.PlanPro:     cfg.Stripe.ProPriceID,
			db_models.PlanPremium: cfg.Stripe.PremiumPriceID,
		},
	}
}

type PlanService struct {
	prices map[db_models.Plan]string
}

func (p *PlanService) ListPlans() []response_models.PlanResponse {
	plans := make([]response_models.PlanResponse, 0, len(planOrder))
	for _, plan := range planOrder {
		info := planCatalog[plan]
		limit := plan.GenerationsLimit()

		features := make([]string, 0, len(info.features)+1)
		features = append(features, fmt.Sprintf("%d generations per month", limit))
		features = append(features, info.features...)

		plans = append(plans, response_models.PlanResponse{
			ID:               string(plan),
			Name:             info.name,
			Price:            info.price,
			Interval:         "month",
			GenerationsLimit: limit,
			Features:         features,
			Highlighted:      info.highlighted,
		})
	}
	return plans
}

func (p *PlanService) PriceID(plan db_models.Plan) (string, error) {
	if !plan.Paid() {
		return "", utils.ErrInvalidPlan
	}
	id := p.prices[plan]
	if id == "" {
		return "", fmt.Errorf("%s: %w", plan, utils.ErrPlanPriceNotConfigured)
	}
	return id, nil
}

func (p *PlanService) PlanForPrice(priceID string) db_models.Plan {
	if priceID == "" {
		return db_models.PlanFree
	}
	for plan, id := range p.prices {
		if id == priceID {
			return plan
		}
	}
	return db_models.PlanFree
}
