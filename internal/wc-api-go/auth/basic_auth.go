package auth // import "WooCostAdjuster/internal/wc-api-go/auth"

import (
	"net/http"
	"net/url"

	"WooCostAdjuster/internal/wc-api-go/options"
)

// BasicAuthentication structure stores all required parameter values
type BasicAuthentication struct {
	Options options.Basic
}

// GetEnrichedQuery method might get Parameters Enriched using Options
func (b *BasicAuthentication) GetEnrichedQuery(p url.Values, o options.Basic) url.Values {
	if p == nil {
		p = url.Values{}
	}
	if o.Options.QueryStringAuth {
		p.Set("consumer_key", o.Key)
		p.Set("consumer_secret", o.Secret)
	}
	return p
}

// EnrichRequest sets the Authorization header unless credentials travel in the query string
func (b *BasicAuthentication) EnrichRequest(r *http.Request, URL string) {
	if !b.Options.Options.QueryStringAuth {
		r.SetBasicAuth(b.Options.Key, b.Options.Secret)
	}
}
