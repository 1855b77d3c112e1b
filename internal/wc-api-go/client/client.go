package client // import "WooCostAdjuster/internal/wc-api-go/client"

import (
	"context"
	"net/http"
	"net/url"

	"WooCostAdjuster/internal/wc-api-go/request"
)

// Sender delivers a prepared request to the shop
type Sender interface {
	Send(req request.Request) (resp *http.Response, err error)
}

// Client turns the REST verbs into requests for its Sender
type Client struct {
	sender Sender
}

// NewWithSender is used by tests and by callers bringing their own transport
func NewWithSender(s Sender) Client {
	return Client{sender: s}
}

// Get Method loads data from Endpoint with specified parameters
func (c *Client) Get(ctx context.Context, endpoint string, parameters url.Values) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Context:  ctx,
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Values:   parameters,
	})
}

// Post Method usually creates new instances
func (c *Client) Post(ctx context.Context, endpoint string, parameters url.Values, body interface{}) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Context:  ctx,
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Values:   parameters,
		Body:     body,
	})
}

// Put Method usually update existing instances
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Context:  ctx,
		Method:   http.MethodPut,
		Endpoint: endpoint,
		Body:     body,
	})
}

// Delete Method usually removes existing instances
func (c *Client) Delete(ctx context.Context, endpoint string, parameters url.Values) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Context:  ctx,
		Method:   http.MethodDelete,
		Endpoint: endpoint,
		Values:   parameters,
	})
}

// Options Method usually using for checking possibility of POST requests
func (c *Client) Options(ctx context.Context, endpoint string) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Context:  ctx,
		Method:   http.MethodOptions,
		Endpoint: endpoint,
		Values:   nil,
	})
}
