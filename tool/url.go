package tool

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/moyoez/upload-widget-go/types"
)

const UploadsPath = "api/uploads"

// BuildUploadURL appends api/uploads to the configured backend base.
// The base is expected to end with a slash; one is added when missing.
func BuildUploadURL(endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("upload endpoint is not configured")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint + UploadsPath, nil
}

// ContextQuery encodes the upload context the way the widget route expects it:
// every key present, empty or not.
func ContextQuery(uctx types.UploadContext) string {
	q := url.Values{}
	q.Set("modul", uctx.Modul)
	q.Set("firmaGuid", uctx.FirmaGuid)
	q.Set("fisTurId", uctx.FisTurId)
	q.Set("satirGuid", uctx.SatirGuid)
	return q.Encode()
}

// BuildWidgetURL builds the widget page URL for the given context.
func BuildWidgetURL(scheme, host string, uctx types.UploadContext) string {
	return fmt.Sprintf("%s://%s/upload?%s", scheme, host, ContextQuery(uctx))
}

// EndpointHost returns the hostname of the backend endpoint, used for probing.
func EndpointHost(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Hostname(), nil
}
