package op

import (
	"errors"
	"net/url"
	"strings"
)

// Endpoint is a relative path under the issuer, exposed absolute
// in the discovery document.
type Endpoint string

func NewEndpoint(path string) *Endpoint {
	e := Endpoint(path)
	return &e
}

func NewEndpointWithURL(path, rawurl string) (*Endpoint, error) {
	// configured absolute urls override the issuer based path
	if _, err := url.Parse(rawurl); err != nil {
		return nil, err
	}
	e := Endpoint(rawurl)
	return &e, nil
}

func (e *Endpoint) Relative() string {
	if e == nil {
		return ""
	}
	return relativeEndpoint(string(*e))
}

func (e *Endpoint) Absolute(host string) string {
	if e == nil {
		return ""
	}
	if strings.HasPrefix(string(*e), "http://") || strings.HasPrefix(string(*e), "https://") {
		return string(*e)
	}
	return absoluteEndpoint(host, string(*e))
}

var ErrNilEndpoint = errors.New("nil endpoint")

func (e *Endpoint) Validate() error {
	if e == nil {
		return ErrNilEndpoint
	}
	_, err := url.Parse(string(*e))
	return err
}

func absoluteEndpoint(host, endpoint string) string {
	return strings.TrimSuffix(host, "/") + relativeEndpoint(endpoint)
}

func relativeEndpoint(endpoint string) string {
	return "/" + strings.TrimPrefix(endpoint, "/")
}
