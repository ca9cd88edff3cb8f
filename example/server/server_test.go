package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jeremija/gosubmit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

const callbackURL = "http://local-app.example/callback"

func newTestServer(t *testing.T, clientOpts ...func(*oidc.ClientMetadata)) (*httptest.Server, *op.Provider) {
	t.Helper()
	var handler http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	metadata := &oidc.ClientMetadata{
		RedirectURIs:            []string{callbackURL},
		TokenEndpointAuthMethod: oidc.AuthMethodBasic,
		GrantTypes:              []oidc.GrantType{oidc.GrantTypeCode, oidc.GrantTypeRefreshToken},
		ResponseTypes:           []oidc.ResponseType{oidc.ResponseTypeCode},
		Scope:                   oidc.SpaceDelimitedArray{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail, oidc.ScopeOfflineAccess},
		PostLogoutRedirectURIs:  []string{"http://local-app.example/logged-out"},
		FrontChannelLogoutURI:   "http://local-app.example/front-logout",
	}
	for _, opt := range clientOpts {
		opt(metadata)
	}
	metadata.ApplyDefaults()
	client := &op.ClientRegistration{
		ClientID:     "web",
		ClientSecret: "secret",
		IssuedAt:     time.Now(),
		Metadata:     metadata,
	}

	h, provider, err := New(ts.URL+"/", DefaultUsers(), []*op.ClientRegistration{client})
	require.NoError(t, err)
	handler = h
	return ts, provider
}

func browserClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			if req.URL.Host == "local-app.example" {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func TestCodeFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	conf := discoverOAuthConfig(t, ts.URL)

	browser := browserClient(t)
	resp, err := browser.Get(conf.AuthCodeURL("some-state"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "expected the login form")

	form := gosubmit.ParseWithURL(resp.Body, resp.Request.URL.String()).FirstForm()
	req := form.Testing(t).NewTestRequest(
		gosubmit.Set("username", "test-user"),
		gosubmit.Set("password", "verysecure"),
	)
	req.RequestURI = ""
	loginURL, err := url.Parse(ts.URL + req.URL.String())
	require.NoError(t, err)
	req.URL = loginURL

	resp, err = browser.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "some-state", location.Query().Get("state"))
	code := location.Query().Get("code")
	require.NotEmpty(t, code)

	token, err := conf.Exchange(ctx, code)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.NotEmpty(t, token.RefreshToken)
	idToken, ok := token.Extra("id_token").(string)
	require.True(t, ok)
	assert.Equal(t, 3, strings.Count(idToken, ".")+1, "id_token must be a compact JWS")

	userInfo := fetchUserinfo(t, ts.URL, token.AccessToken)
	assert.Equal(t, "id1", userInfo.Subject)
	assert.Equal(t, "test-user@example.com", userInfo.Email)

	// the same code must not be exchangeable twice
	_, err = conf.Exchange(ctx, code)
	require.Error(t, err)
	var retrieveErr *oauth2.RetrieveError
	require.ErrorAs(t, err, &retrieveErr)
	assert.Contains(t, string(retrieveErr.Body), "invalid_grant_and_session")
}

func TestRefreshFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)

	token := loginAndExchange(t, ctx, ts.URL, conf)
	require.NotEmpty(t, token.RefreshToken)

	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken})
	refreshed, err := src.Token()
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, token.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, token.RefreshToken, refreshed.RefreshToken, "refresh tokens rotate")

	// the rotated-out refresh token is dead
	src = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken})
	_, err = src.Token()
	require.Error(t, err)
}

func loginAndExchange(t *testing.T, ctx context.Context, baseURL string, conf *oauth2.Config) *oauth2.Token {
	t.Helper()
	_, token := loginBrowserAndExchange(t, ctx, baseURL, conf)
	return token
}

// loginBrowserAndExchange runs the browser part of the code flow and
// returns the browser with its live session cookie alongside the
// exchanged token.
func loginBrowserAndExchange(t *testing.T, ctx context.Context, baseURL string, conf *oauth2.Config) (*http.Client, *oauth2.Token) {
	t.Helper()
	browser := browserClient(t)
	resp, err := browser.Get(conf.AuthCodeURL("state"))
	require.NoError(t, err)
	defer resp.Body.Close()

	form := gosubmit.ParseWithURL(resp.Body, resp.Request.URL.String()).FirstForm()
	req := form.Testing(t).NewTestRequest(
		gosubmit.Set("username", "test-user"),
		gosubmit.Set("password", "verysecure"),
	)
	req.RequestURI = ""
	loginURL, err := url.Parse(baseURL + req.URL.String())
	require.NoError(t, err)
	req.URL = loginURL

	resp, err = browser.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	token, err := conf.Exchange(ctx, location.Query().Get("code"))
	require.NoError(t, err)
	return browser, token
}

// idTokenSessionID reads the sid claim out of the id token.
func idTokenSessionID(t *testing.T, token *oauth2.Token) string {
	t.Helper()
	idToken, ok := token.Extra("id_token").(string)
	require.True(t, ok)
	parts := strings.Split(idToken, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	claims := new(oidc.IDTokenClaims)
	require.NoError(t, json.Unmarshal(payload, claims))
	require.NotEmpty(t, claims.SessionID)
	return claims.SessionID
}

func discoverOAuthConfig(t *testing.T, baseURL string) *oauth2.Config {
	t.Helper()
	resp, err := http.Get(baseURL + oidc.DiscoveryEndpoint)
	require.NoError(t, err)
	defer resp.Body.Close()
	discovery := new(oidc.DiscoveryConfiguration)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(discovery))
	return &oauth2.Config{
		ClientID:     "web",
		ClientSecret: "secret",
		RedirectURL:  callbackURL,
		Scopes:       []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail, oidc.ScopeOfflineAccess},
		Endpoint: oauth2.Endpoint{
			AuthURL:  discovery.AuthorizationEndpoint,
			TokenURL: discovery.TokenEndpoint,
		},
	}
}

func fetchUserinfo(t *testing.T, baseURL, accessToken string) *oidc.UserInfo {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+"/userinfo", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", oidc.PrefixBearer+accessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	userInfo := new(oidc.UserInfo)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(userInfo))
	return userInfo
}

func TestPromptNoneSessionReuse(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)

	browser, token := loginBrowserAndExchange(t, ctx, ts.URL, conf)
	require.NotEmpty(t, token.AccessToken)

	// the browser session is live, prompt=none must skip the login form
	// and answer with a fresh code each time
	codes := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := browser.Get(conf.AuthCodeURL("silent", oauth2.SetAuthURLParam("prompt", "none")))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		require.Empty(t, location.Query().Get("error"))
		code := location.Query().Get("code")
		require.NotEmpty(t, code)
		codes = append(codes, code)
	}
	assert.NotEqual(t, codes[0], codes[1], "each authorization issues its own code")

	token2, err := conf.Exchange(ctx, codes[0])
	require.NoError(t, err)
	assert.NotEqual(t, token.AccessToken, token2.AccessToken)
}

func TestEndSessionTwice(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)

	_, token := loginBrowserAndExchange(t, ctx, ts.URL, conf)
	sid := idTokenSessionID(t, token)

	endSession := ts.URL + "/end_session?" + url.Values{
		"sid":                      {sid},
		"client_id":                {"web"},
		"post_logout_redirect_uri": {"http://local-app.example/logged-out"},
	}.Encode()

	resp, err := http.Get(endSession)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	assert.Contains(t, page, "http://local-app.example/front-logout")
	assert.Contains(t, page, "http://local-app.example/logged-out")

	// the session is gone, ending it again must fail
	resp, err = http.Get(endSession)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid_grant_and_session")
}

func TestAccessTokenExpiry(t *testing.T) {
	ts, _ := newTestServer(t, func(m *oidc.ClientMetadata) {
		m.AccessTokenLifetime = 1
	})
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)

	token := loginAndExchange(t, ctx, ts.URL, conf)

	userInfo := fetchUserinfo(t, ts.URL, token.AccessToken)
	assert.Equal(t, "id1", userInfo.Subject)

	time.Sleep(2 * time.Second)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/userinfo", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", oidc.PrefixBearer+token.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expired access token")
}

func TestSpontaneousScopeGrant(t *testing.T) {
	ts, _ := newTestServer(t, func(m *oidc.ClientMetadata) {
		m.AllowSpontaneousScopes = true
		m.SpontaneousScopes = []string{"urn:acme:transaction:*"}
	})
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)
	conf.Scopes = []string{oidc.ScopeOpenID, "urn:acme:transaction:245", "urn:acme:unmatched"}

	token := loginAndExchange(t, ctx, ts.URL, conf)

	scope, ok := token.Extra("scope").(string)
	require.True(t, ok)
	assert.Contains(t, scope, "urn:acme:transaction:245")
	assert.NotContains(t, scope, "urn:acme:unmatched", "scopes outside the spontaneous patterns are dropped")
}

func TestRegistrationBlockedRedirectURI(t *testing.T) {
	ts, _ := newTestServer(t)

	register := func(t *testing.T, redirectURI string) *http.Response {
		t.Helper()
		body, err := json.Marshal(&oidc.ClientMetadata{
			RedirectURIs: []string{redirectURI},
		})
		require.NoError(t, err)
		resp, err := http.Post(ts.URL+"/register", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	resp := register(t, "https://evil.attacker.com/cb")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid_redirect_uri")

	// a clean registration passes, but cannot be updated onto a blocked uri
	resp = register(t, "https://legit.example.org/cb")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	info := new(oidc.ClientInformationResponse)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(info))
	resp.Body.Close()

	update, err := json.Marshal(&oidc.ClientMetadata{
		RedirectURIs: []string{"https://evil.attacker.com/cb"},
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/register/"+info.ClientID, bytes.NewReader(update))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", oidc.PrefixBearer+info.RegistrationAccessToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid_redirect_uri")
}

func TestIntrospectionBearerAuth(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()
	conf := discoverOAuthConfig(t, ts.URL)

	token := loginAndExchange(t, ctx, ts.URL, conf)

	form := url.Values{"token": {token.AccessToken}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/introspect", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("authorization", oidc.PrefixBearer+token.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	introspection := new(oidc.IntrospectionResponse)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(introspection))
	assert.True(t, introspection.Active)
	assert.Equal(t, "id1", introspection.Subject)
}
