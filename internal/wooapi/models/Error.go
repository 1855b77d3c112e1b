package models

import (
	"fmt"
	"net/http"
)

type ErrorWoo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
		Params struct {
			Display string `json:"display"`
		} `json:"params"`
		ResourceId int `json:"resource_id"`
	} `json:"data"`

	// HTTP status of the response, filled by the client
	StatusCode int `json:"-"`
}

func (e *ErrorWoo) Error() string {
	return fmt.Sprintf("code:%s; message:%s; status:%d; http:%d; display:%s;",
		e.Code,
		e.Message,
		e.Data.Status,
		e.StatusCode,
		e.Data.Params.Display,
	)
}

// NotFound reports whether the shop answered that the resource does not exist
func (e *ErrorWoo) NotFound() bool {
	if e.StatusCode == http.StatusNotFound || e.Data.Status == http.StatusNotFound {
		return true
	}
	switch e.Code {
	case "woocommerce_rest_product_invalid_id", "woocommerce_rest_product_variation_invalid_id":
		return true
	}
	return false
}
