package options // import "WooCostAdjuster/internal/wc-api-go/options"

import "time"

// Basic options are required to reach the shop
type Basic struct {
	URL     string
	Key     string
	Secret  string
	Options Advanced
}

// Advanced options tune the way requests are built
type Advanced struct {
	WPAPI           bool
	WPAPIPrefix     string
	Version         string
	QueryStringAuth bool
	Timeout         time.Duration
}
