package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"herotime/internal/models/db_models"
	"herotime/internal/models/request_models"
)

func TestResolveImageParams(t *testing.T) {
	cases := []struct {
		name string
		plan db_models.Plan
		opts *request_models.ImageOptions
		want ImageParams
	}{
		{
			name: "free is forced to 1K 4:3",
			plan: db_models.PlanFree,
			opts: &request_models.ImageOptions{Size: "4K", AspectRatio: "16:9"},
			want: ImageParams{Size: "1K", Width: 1024, Height: 1024, AspectRatio: "4:3"},
		},
		{
			name: "pro 4K is coerced to 2K",
			plan: db_models.PlanPro,
			opts: &request_models.ImageOptions{Size: "4K", AspectRatio: "16:9"},
			want: ImageParams{Size: "2K", Width: 2048, Height: 2048, AspectRatio: "16:9"},
		},
		{
			name: "pro custom is coerced to 2K",
			plan: db_models.PlanPro,
			opts: &request_models.ImageOptions{Size: "custom", Width: 3000, Height: 1500},
			want: ImageParams{Size: "2K", Width: 2048, Height: 2048, AspectRatio: "4:3"},
		},
		{
			name: "pro keeps 1K",
			plan: db_models.PlanPro,
			opts: &request_models.ImageOptions{Size: "1K"},
			want: ImageParams{Size: "1K", Width: 1024, Height: 1024, AspectRatio: "4:3"},
		},
		{
			name: "premium custom keeps dimensions",
			plan: db_models.PlanPremium,
			opts: &request_models.ImageOptions{Size: "custom", Width: 3000, Height: 1500},
			want: ImageParams{Size: "custom", Width: 3000, Height: 1500, AspectRatio: "4:3"},
		},
		{
			name: "premium custom clamps and defaults",
			plan: db_models.PlanPremium,
			opts: &request_models.ImageOptions{Size: "custom", Width: 9000},
			want: ImageParams{Size: "custom", Width: 4096, Height: 2048, AspectRatio: "4:3"},
		},
		{
			name: "premium 4K",
			plan: db_models.PlanPremium,
			opts: &request_models.ImageOptions{Size: "4K", AspectRatio: "9:16"},
			want: ImageParams{Size: "4K", Width: 4096, Height: 4096, AspectRatio: "9:16"},
		},
		{
			name: "premium without options",
			plan: db_models.PlanPremium,
			want: ImageParams{Size: "2K", Width: 2048, Height: 2048, AspectRatio: "4:3"},
		},
		{
			name: "unknown plan falls back to 2K",
			plan: db_models.Plan("enterprise"),
			opts: &request_models.ImageOptions{Size: "1K", AspectRatio: "1:1"},
			want: ImageParams{Size: "2K", Width: 2048, Height: 2048, AspectRatio: "4:3"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveImageParams(tc.plan, tc.opts))
		})
	}
}

func TestResolveImageParamsKeepsPrompt(t *testing.T) {
	p := ResolveImageParams(db_models.PlanFree, &request_models.ImageOptions{Prompt: "cowboy"})
	assert.Equal(t, "cowboy", p.Prompt)
}
