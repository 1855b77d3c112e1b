package net // import "WooCostAdjuster/internal/wc-api-go/net"

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"WooCostAdjuster/internal/wc-api-go/request"
	"github.com/pkg/errors"
)

// Sender provides HTTP Requests
type Sender struct {
	requestEnricher RequestEnricher
	urlBuilder      URLBuilder
	httpClient      Client
	requestCreator  RequestCreator
}

// Send method sends requests to WooCommerce API
func (s *Sender) Send(req request.Request) (resp *http.Response, err error) {
	r, err := s.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	return s.httpClient.Do(r)
}

func (s *Sender) prepareRequest(req request.Request) (*http.Request, error) {
	URL := s.urlBuilder.GetURL(req)

	var body io.Reader
	if req.Body != nil && (req.Method == http.MethodPost || req.Method == http.MethodPut) {
		reqBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "failed json.Marshal body for %s %s", req.Method, req.Endpoint)
		}
		body = bytes.NewBuffer(reqBody)
	}

	r, err := s.requestCreator.NewRequest(req.Context, req.Method, URL, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed NewRequest %s %s", req.Method, req.Endpoint)
	}
	s.requestEnricher.EnrichRequest(r, URL)
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}

// SetRequestEnricher ...
func (s *Sender) SetRequestEnricher(a RequestEnricher) {
	s.requestEnricher = a
}

// SetURLBuilder ...
func (s *Sender) SetURLBuilder(urlBuilder URLBuilder) {
	s.urlBuilder = urlBuilder
}

// SetHTTPClient ...
func (s *Sender) SetHTTPClient(c Client) {
	s.httpClient = c
}

// SetRequestCreator ...
func (s *Sender) SetRequestCreator(rc RequestCreator) {
	s.requestCreator = rc
}
