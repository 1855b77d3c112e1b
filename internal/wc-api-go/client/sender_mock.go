package client

import (
	"net/http"

	"WooCostAdjuster/internal/wc-api-go/request"
)

// SenderMock imitates sending requests and receiving responses
type SenderMock struct {
	response http.Response
	Requests []request.Request
}

// NewSenderMock returns a mock answering every request with response
func NewSenderMock(response *http.Response) *SenderMock {
	return &SenderMock{response: *response}
}

// Send ...
func (r *SenderMock) Send(req request.Request) (resp *http.Response, err error) {
	r.Requests = append(r.Requests, req)
	return &r.response, nil
}
