package options

import (
	"strconv"
)

type OptionStruct struct {
	Key   string
	Value string
}

type Option func(*OptionStruct)

func Page(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "page"
		f.Value = strconv.Itoa(value)
	}
}

func PerPage(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "per_page"
		f.Value = strconv.Itoa(value)
	}
}

// Status filters products by post status, e.g. "publish"
func Status(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "status"
		f.Value = value
	}
}

// Fields limits the response to the listed fields, e.g. "id,type"
func Fields(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "_fields"
		f.Value = value
	}
}

func OrderBy(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "orderby"
		f.Value = value
	}
}

func Order(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "order"
		f.Value = value
	}
}
