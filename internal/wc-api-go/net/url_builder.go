package net // import "WooCostAdjuster/internal/wc-api-go/net"

import (
	"net/url"
	"strings"

	"WooCostAdjuster/internal/wc-api-go/options"
	"WooCostAdjuster/internal/wc-api-go/request"
)

// URLBuilder interface
type URLBuilder interface {
	GetURL(req request.Request) string
}

// QueryEnricher adds authentication parameters to the query
type QueryEnricher interface {
	GetEnrichedQuery(p url.Values, o options.Basic) url.Values
}

// URLBuilderImpl builds <shop>/wp-json/wc/v3/<endpoint>?<query>
type URLBuilderImpl struct {
	Options       options.Basic
	QueryEnricher QueryEnricher
}

// GetURL ...
func (u *URLBuilderImpl) GetURL(req request.Request) string {
	o := u.Options.Options
	base := strings.TrimRight(u.Options.URL, "/")
	if o.WPAPI {
		base += "/" + strings.Trim(o.WPAPIPrefix, "/")
	} else {
		base += "/wc-api"
	}
	base += "/" + strings.Trim(o.Version, "/") + "/" + strings.TrimLeft(req.Endpoint, "/")

	query := url.Values{}
	for k, v := range req.Values {
		query[k] = append([]string(nil), v...)
	}
	if u.QueryEnricher != nil {
		query = u.QueryEnricher.GetEnrichedQuery(query, u.Options)
	}
	if encoded := query.Encode(); encoded != "" {
		return base + "?" + encoded
	}
	return base
}
