// Package request holds the transport independent description of one call
// to the WooCommerce REST API.
package request

import (
	"context"
	"net/url"
)

type Request struct {
	// Context bounds the HTTP round trip; nil means context.Background.
	Context context.Context
	Method  string
	// Endpoint is relative to the API root, for example "products/12".
	Endpoint string
	Values   url.Values
	// Body is sent as JSON for POST and PUT only.
	Body interface{}
}
