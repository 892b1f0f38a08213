package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound requests to other services.
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
