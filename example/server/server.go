// Package server wires a complete authorization server with a tiny
// login UI, handy for local experiments and as integration test
// subject.
package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
	"github.com/auric-id/auric/pkg/storage"
)

const loginPath = "/login"

var loginTmpl = template.Must(template.New("login").Parse(`<!doctype html>
<html>
<body>
<form method="POST" action="{{.Action}}">
<input type="hidden" name="id" value="{{.ID}}"/>
<input type="text" name="username" placeholder="Username"/>
<input type="password" name="password" placeholder="Password"/>
{{if .Error}}<p>{{.Error}}</p>{{end}}
<button type="submit">Login</button>
</form>
</body>
</html>`))

// New builds a provider on a fresh in-memory storage, seeded with the
// given users and clients, and mounts it together with the login UI.
func New(issuer string, users []*storage.User, clients []*op.ClientRegistration, opts ...op.Option) (http.Handler, *op.Provider, error) {
	store, err := storage.NewMemoryStorage(func(grantID string) string {
		return issuer + "login?id=" + grantID
	})
	if err != nil {
		return nil, nil, err
	}
	for _, user := range users {
		store.AddUser(user)
	}
	for _, client := range clients {
		store.AddClient(client)
	}

	config := &op.Config{
		CryptoKey:                  sha256.Sum256([]byte("example")),
		AuthMethodPost:             true,
		GrantTypeRefreshToken:      true,
		GrantTypePassword:          true,
		BlockedRedirectURIPatterns: []string{"https://*.attacker.com/*"},
	}
	provider, err := op.NewProvider(config, store, issuer, append([]op.Option{op.WithAllowInsecure()}, opts...)...)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Get(loginPath, func(w http.ResponseWriter, r *http.Request) {
		renderLogin(w, r.URL.Query().Get("id"), "")
	})
	router.Post(loginPath, loginSubmitHandler(provider))
	router.Mount("/", provider.HttpHandler())
	return router, provider, nil
}

func renderLogin(w http.ResponseWriter, grantID, errMsg string) {
	err := loginTmpl.Execute(w, struct {
		Action string
		ID     string
		Error  string
	}{loginPath, grantID, errMsg})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func loginSubmitHandler(provider *op.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "cannot parse form", http.StatusBadRequest)
			return
		}
		grantID := r.PostFormValue("id")
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if err := finishLogin(r.Context(), provider, w, r, grantID, username, password); err != nil {
			renderLogin(w, grantID, err.Error())
		}
	}
}

// finishLogin authenticates the user, creates the browser session and
// completes the grant before sending the user agent back to the
// callback of the authorization endpoint.
func finishLogin(ctx context.Context, provider *op.Provider, w http.ResponseWriter, r *http.Request, grantID, username, password string) error {
	grant, err := provider.Storage().GrantByID(ctx, grantID)
	if err != nil {
		return fmt.Errorf("unknown grant")
	}
	subject, err := provider.Storage().AuthenticateUser(ctx, username, password)
	if err != nil {
		return fmt.Errorf("wrong username or password")
	}
	state := op.BrowserStateFromRequest(provider, r)
	session, err := op.NewSession(ctx, provider, state, subject, username, "basic", []string{"pwd"}, nil)
	if err != nil {
		return fmt.Errorf("cannot create session")
	}
	if err := op.WriteBrowserState(provider, w, state); err != nil {
		return fmt.Errorf("cannot store session state")
	}
	grant.Authenticate(session)
	grant.Consent()
	if err := provider.Storage().UpdateGrant(ctx, grant); err != nil {
		return fmt.Errorf("cannot update grant")
	}
	callback := op.AuthCallbackURL(provider)(op.ContextWithIssuer(ctx, provider.IssuerFromRequest(r)), grantID)
	http.Redirect(w, r, callback, http.StatusFound)
	return nil
}

// DefaultUsers returns the demo account used across the examples.
func DefaultUsers() []*storage.User {
	return []*storage.User{{
		ID:       "id1",
		Username: "test-user",
		Password: "verysecure",
		UserInfo: &oidc.UserInfo{
			Subject: "id1",
			UserInfoProfile: oidc.UserInfoProfile{
				Name:       "Test User",
				GivenName:  "Test",
				FamilyName: "User",
			},
			UserInfoEmail: oidc.UserInfoEmail{
				Email:         "test-user@example.com",
				EmailVerified: true,
			},
		},
	}}
}
