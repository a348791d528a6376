package inference

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnrecognizedOutput is returned when a prediction result carries no usable image URL.
var ErrUnrecognizedOutput = errors.New("unrecognized prediction output")

// Output is the decoded result of a prediction. It is one of StringOutput, ListOutput,
// HandleOutput or UnknownOutput.
type Output interface {
	isOutput()
}

// StringOutput is a bare URL.
type StringOutput string

// ListOutput is an ordered list of results; only the first element is ever used.
type ListOutput []Output

// HandleOutput is a file handle whose URL is resolved on demand.
type HandleOutput struct {
	Resolve func(ctx context.Context) (string, error)
}

// UnknownOutput wraps a result of any other shape.
type UnknownOutput struct {
	Raw any
}

func (StringOutput) isOutput()  {}
func (ListOutput) isOutput()    {}
func (HandleOutput) isOutput()  {}
func (UnknownOutput) isOutput() {}

// StaticHandle returns a handle that resolves to url.
func StaticHandle(url string) HandleOutput {
	return HandleOutput{Resolve: func(context.Context) (string, error) { return url, nil }}
}

// ParseOutput decodes the JSON value the provider returned as prediction output.
func ParseOutput(raw any) Output {
	switch v := raw.(type) {
	case string:
		return StringOutput(v)
	case []string:
		items := make(ListOutput, 0, len(v))
		for _, s := range v {
			items = append(items, StringOutput(s))
		}
		return items
	case []any:
		items := make(ListOutput, 0, len(v))
		for _, item := range v {
			items = append(items, ParseOutput(item))
		}
		return items
	case map[string]any:
		if url, ok := v["url"].(string); ok {
			return StaticHandle(url)
		}
		return UnknownOutput{Raw: raw}
	case Output:
		return v
	default:
		return UnknownOutput{Raw: raw}
	}
}

// ExtractURL picks the single image URL out of a prediction output.
//
// A string is the URL. A non-empty list yields its first element when that element is a
// string or a handle; anything deeper is rejected. A handle is resolved. Every other shape,
// or an empty URL, fails with ErrUnrecognizedOutput.
func ExtractURL(ctx context.Context, out Output) (string, error) {
	var url string

	switch v := out.(type) {
	case StringOutput:
		url = string(v)
	case ListOutput:
		if len(v) == 0 {
			return "", fmt.Errorf("%w: empty list", ErrUnrecognizedOutput)
		}
		switch first := v[0].(type) {
		case StringOutput:
			url = string(first)
		case HandleOutput:
			resolved, err := resolve(ctx, first)
			if err != nil {
				return "", err
			}
			url = resolved
		default:
			return "", fmt.Errorf("%w: unsupported list element %T", ErrUnrecognizedOutput, first)
		}
	case HandleOutput:
		resolved, err := resolve(ctx, v)
		if err != nil {
			return "", err
		}
		url = resolved
	default:
		return "", fmt.Errorf("%w: %T", ErrUnrecognizedOutput, out)
	}

	if url == "" {
		return "", fmt.Errorf("%w: empty url", ErrUnrecognizedOutput)
	}
	return url, nil
}

func resolve(ctx context.Context, h HandleOutput) (string, error) {
	if h.Resolve == nil {
		return "", fmt.Errorf("%w: handle without resolver", ErrUnrecognizedOutput)
	}
	url, err := h.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve output url: %w", err)
	}
	return url, nil
}
