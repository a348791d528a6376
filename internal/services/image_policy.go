package services

import (
	"herotime/internal/models/db_models"
	"herotime/internal/models/request_models"
)

const (
	Size1K     = "1K"
	Size2K     = "2K"
	Size4K     = "4K"
	SizeCustom = "custom"

	defaultAspectRatio = "4:3"
	defaultDimension   = 2048
	minDimension       = 1024
	maxDimension       = 4096
)

var sizeDimensions = map[string]int{
	Size1K: 1024,
	Size2K: 2048,
	Size4K: 4096,
}

// ImageParams are the effective model parameters after tier gating.
type ImageParams struct {
	Size        string
	Width       int
	Height      int
	AspectRatio string
	Prompt      string
}

// ResolveImageParams gates client options by plan tier. Free is fixed at 1K 4:3, pro tops
// out at 2K, premium may request custom dimensions. Options outside the tier are coerced
// silently.
func ResolveImageParams(plan db_models.Plan, opts *request_models.ImageOptions) ImageParams {
	if opts == nil {
		opts = &request_models.ImageOptions{}
	}

	var p ImageParams
	switch plan {
	case db_models.PlanFree:
		p = presetParams(Size1K, defaultAspectRatio)
	case db_models.PlanPro:
		size := opts.Size
		if size == Size4K || size == SizeCustom {
			size = Size2K
		}
		p = presetParams(size, aspectOr(opts.AspectRatio))
	case db_models.PlanPremium:
		if opts.Size == SizeCustom {
			p = ImageParams{
				Size:        SizeCustom,
				Width:       clampDimension(opts.Width),
				Height:      clampDimension(opts.Height),
				AspectRatio: aspectOr(opts.AspectRatio),
			}
		} else {
			p = presetParams(opts.Size, aspectOr(opts.AspectRatio))
		}
	default:
		p = presetParams(Size2K, defaultAspectRatio)
	}

	p.Prompt = opts.Prompt
	return p
}

func presetParams(size, aspect string) ImageParams {
	dim, ok := sizeDimensions[size]
	if !ok {
		size, dim = Size2K, defaultDimension
	}
	return ImageParams{Size: size, Width: dim, Height: dim, AspectRatio: aspect}
}

func aspectOr(aspect string) string {
	if aspect == "" {
		return defaultAspectRatio
	}
	return aspect
}

func clampDimension(v int) int {
	switch {
	case v == 0:
		return defaultDimension
	case v < minDimension:
		return minDimension
	case v > maxDimension:
		return maxDimension
	default:
		return v
	}
}
