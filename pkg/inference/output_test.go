package inference

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herotime/internal/config"
)

const imgURL = "https://x/img.png"

func TestExtractURLShapes(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		out  Output
	}{
		{"string", StringOutput(imgURL)},
		{"list of strings", ListOutput{StringOutput(imgURL), StringOutput("https://x/other.png")}},
		{"list of handles", ListOutput{StaticHandle(imgURL)}},
		{"single handle", StaticHandle(imgURL)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractURL(ctx, tc.out)
			require.NoError(t, err)
			assert.Equal(t, imgURL, got)
		})
	}
}

func TestExtractURLRejects(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		out  Output
	}{
		{"empty object", ParseOutput(map[string]any{})},
		{"empty list", ListOutput{}},
		{"nested list", ListOutput{ListOutput{StringOutput(imgURL)}}},
		{"empty string", StringOutput("")},
		{"handle resolving empty", StaticHandle("")},
		{"number", ParseOutput(42.0)},
		{"nil", ParseOutput(nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractURL(ctx, tc.out)
			assert.ErrorIs(t, err, ErrUnrecognizedOutput)
		})
	}
}

func TestExtractURLHandleError(t *testing.T) {
	boom := errors.New("boom")
	h := HandleOutput{Resolve: func(context.Context) (string, error) { return "", boom }}

	_, err := ExtractURL(context.Background(), h)
	assert.ErrorIs(t, err, boom)
}

func TestParseOutputFromJSON(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`[{"url":"https://x/img.png"}, "https://x/b.png"]`), &raw))

	out := ParseOutput(raw)
	list, ok := out.(ListOutput)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.IsType(t, HandleOutput{}, list[0])
	assert.Equal(t, StringOutput("https://x/b.png"), list[1])

	got, err := ExtractURL(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, imgURL, got)
}

func TestNewReplicateClientWithoutKey(t *testing.T) {
	c, err := NewReplicateClient(config.ReplicateConfig{Model: "bytedance/seedream-4"})
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), Request{Prompt: "hero"})
	assert.Error(t, err)

	_, err = NewReplicateClient(config.ReplicateConfig{Model: "seedream"})
	assert.Error(t, err)
}
