package http

import (
	"net/http"
	"net/url"
)

// Decoder populates a struct from form values, implemented by
// [github.com/zitadel/schema.Decoder].
type Decoder interface {
	Decode(dst any, src map[string][]string) error
}

// Encoder encodes a struct into form values, implemented by
// [github.com/zitadel/schema.Encoder].
type Encoder interface {
	Encode(src any, dst map[string][]string) error
}

type RequestAuthorization func(*http.Request)

// AuthorizeBasic creates the www form url encoded basic auth header
// of RFC 6749 section 2.3.1. User and password are query escaped
// before encoding.
func AuthorizeBasic(user, password string) RequestAuthorization {
	return func(req *http.Request) {
		req.SetBasicAuth(url.QueryEscape(user), url.QueryEscape(password))
	}
}

func URLEncodeParams(resp any, encoder Encoder) (url.Values, error) {
	values := make(map[string][]string)
	err := encoder.Encode(resp, values)
	if err != nil {
		return nil, err
	}
	return values, nil
}
