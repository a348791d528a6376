package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURI is a decoded base64 data URI.
type DataURI struct {
	MimeType  string
	Extension string
	Data      []byte
}

// ParseDataURI decodes "data:<mime>;base64,<payload>".
func ParseDataURI(raw string) (*DataURI, error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrInvalidDataURI
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok || payload == "" {
		return nil, ErrInvalidDataURI
	}

	mimeType, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return nil, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURI)
	}

	_, ext, ok := strings.Cut(mimeType, "/")
	if mimeType == "" || !ok || ext == "" {
		return nil, fmt.Errorf("%w: missing mime type", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return &DataURI{
		MimeType:  strings.ToLower(mimeType),
		Extension: strings.ToLower(ext),
		Data:      data,
	}, nil
}
