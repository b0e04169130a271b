package tool

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

var (
	DefaultDialTimeout = 30 * time.Second
	UploadHttpClient   = NewHTTPClient(false)
)

// NewHTTPClient creates the client used for backend uploads.
// No overall Timeout is set: a 100MB body may take longer than any fixed limit,
// so only dial and handshake are bounded.
func NewHTTPClient(insecureSkipVerify bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   DefaultDialTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: insecureSkipVerify},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
	}
}

// InitHTTPClients (re)initializes the upload client from config.
func InitHTTPClients(insecureSkipVerify bool) {
	UploadHttpClient = NewHTTPClient(insecureSkipVerify)
}

func GetHttpClient() *http.Client {
	return UploadHttpClient
}
