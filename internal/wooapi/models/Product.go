package models

import (
	"fmt"
	"strconv"
)

type Product struct {
	ID           int         `json:"id,omitempty"`
	ParentId     int         `json:"parent_id,omitempty"`
	Name         string      `json:"name,omitempty"`
	Slug         string      `json:"slug,omitempty"`
	Type         string      `json:"type,omitempty"`
	Status       string      `json:"status,omitempty"`
	Sku          string      `json:"sku,omitempty"`
	Price        string      `json:"price,omitempty"`
	RegularPrice string      `json:"regular_price,omitempty"`
	SalePrice    string      `json:"sale_price,omitempty"`
	DateModified string      `json:"date_modified,omitempty"`
	Variations   []int       `json:"variations,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	MetaData     []MetaData  `json:"meta_data,omitempty"`
}

// Attribute is the variation flavour of a product attribute (name + chosen option)
type Attribute struct {
	Id     int    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Option string `json:"option,omitempty"`
}

type MetaData struct {
	Id    int         `json:"id,omitempty"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// Meta returns the string form of the meta value stored under key
func (p *Product) Meta(key string) (string, bool) {
	for _, m := range p.MetaData {
		if m.Key != key {
			continue
		}
		switch v := m.Value.(type) {
		case nil:
			return "", true
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		default:
			return fmt.Sprint(v), true
		}
	}
	return "", false
}
