package op

import (
	"log/slog"
	"net/http"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

// ErrAuthRequest is the subset of the auth request needed to
// report an error back to the client via redirect.
type ErrAuthRequest interface {
	GetRedirectURI() string
	GetResponseType() oidc.ResponseType
	GetResponseMode() oidc.ResponseMode
	GetState() string
}

// AuthRequestError reports the error to the client through a redirect
// with error, error_description and state parameters. If the redirect
// target is unknown or not trusted (invalid redirect_uri, invalid
// client metadata), the error is written as a direct 400 response
// instead, the user agent must not be sent to an unvalidated uri.
func AuthRequestError(w http.ResponseWriter, r *http.Request, authReq ErrAuthRequest, err error, authorizer Authorizer) {
	e := oidc.DefaultToServerError(err, err.Error())
	logger := authorizer.Logger().With(slog.Any("oidc_error", e))

	if authReq == nil || authReq.GetRedirectURI() == "" || e.IsRedirectDisabled() {
		logger.Log(r.Context(), e.LogLevel(), "auth request error without redirect")
		http.Error(w, e.Error(), http.StatusBadRequest)
		return
	}

	e.State = authReq.GetState()
	url, err := AuthResponseURL(authReq.GetRedirectURI(), authReq.GetResponseType(), authReq.GetResponseMode(), e, authorizer.Encoder())
	if err != nil {
		logger.ErrorContext(r.Context(), "auth response URL", "err", err)
		http.Error(w, e.Error(), http.StatusBadRequest)
		return
	}
	logger.Log(r.Context(), e.LogLevel(), "auth request error redirect")
	http.Redirect(w, r, url, http.StatusFound)
}

// RequestError writes the error as a JSON body, the format used by all
// non-redirecting endpoints. invalid_client is reported with status 401
// as required by RFC 6749 section 5.2.
func RequestError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	e := oidc.DefaultToServerError(err, err.Error())
	status := http.StatusBadRequest
	switch e.ErrorType {
	case oidc.InvalidClient, oidc.InvalidToken:
		status = http.StatusUnauthorized
	case oidc.AccessDenied:
		status = http.StatusForbidden
	case oidc.ServerError:
		status = http.StatusInternalServerError
	}
	e.State = "" // no state in errors outside of the auth endpoint
	logger.Log(r.Context(), e.LogLevel(), "request error", slog.Any("oidc_error", e))
	httphelper.MarshalJSONWithStatus(w, e, status)
}
