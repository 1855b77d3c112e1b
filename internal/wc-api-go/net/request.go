package net

import (
	"context"
	"io"
	"net/http"
)

// RequestEnricher adds Basic Authentication settings in Request in case of Basic Authentication
type RequestEnricher interface {
	EnrichRequest(r *http.Request, URL string)
}

// Client is satisfied by *http.Client
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestCreator builds http requests
type RequestCreator interface {
	NewRequest(ctx context.Context, method, URL string, body io.Reader) (*http.Request, error)
}

// ContextRequestCreator uses http.NewRequestWithContext
type ContextRequestCreator struct{}

// NewRequest ...
func (c *ContextRequestCreator) NewRequest(ctx context.Context, method, URL string, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return http.NewRequestWithContext(ctx, method, URL, body)
}
