package httpclient

import (
	"net/http"
	"time"
)

// NewHTTPClient builds the client used for calls between services.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}
