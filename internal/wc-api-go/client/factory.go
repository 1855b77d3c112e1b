package client // import "WooCostAdjuster/internal/wc-api-go/client"

import (
	"net/http"
	"time"

	"WooCostAdjuster/internal/wc-api-go/auth"
	"WooCostAdjuster/internal/wc-api-go/net"
	"WooCostAdjuster/internal/wc-api-go/options"
)

// Factory wires the Sender pieces together
type Factory struct{}

// NewClient returns a Client talking to the shop described by o
func (f *Factory) NewClient(o options.Basic) Client {
	if o.Options.Version == "" {
		o.Options.Version = "wc/v3"
	}
	if o.Options.WPAPI && o.Options.WPAPIPrefix == "" {
		o.Options.WPAPIPrefix = "/wp-json/"
	}
	timeout := o.Options.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	authenticator := &auth.BasicAuthentication{Options: o}

	sender := &net.Sender{}
	sender.SetRequestEnricher(authenticator)
	sender.SetURLBuilder(&net.URLBuilderImpl{
		Options:       o,
		QueryEnricher: authenticator,
	})
	sender.SetHTTPClient(&http.Client{Timeout: timeout})
	sender.SetRequestCreator(&net.ContextRequestCreator{})

	return Client{sender: sender}
}
