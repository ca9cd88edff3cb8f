// Command auric runs the authorization server with either the
// in-memory or the Redis backed storage.
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zitadel/logging"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
	"github.com/auric-id/auric/pkg/policy"
	"github.com/auric-id/auric/pkg/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Fatal("auric exited")
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auric",
		Short: "OAuth2 / OpenID Connect authorization server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.String("issuer", "http://localhost:9998/", "issuer url of this server")
	flags.String("listen", ":9998", "listen address")
	flags.String("redis", "", "redis address, empty for in-memory storage")
	flags.String("crypto-key", "", "passphrase for token and cookie encryption")
	flags.String("login-url", "", "login UI base url, defaults to <issuer>login")
	flags.Bool("insecure", false, "allow http issuers")
	flags.StringSlice("blocked-redirect-uris", nil, "glob patterns of redirect uris rejected at client registration")
	flags.String("config", "", "config file")

	viper.SetEnvPrefix("auric")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		logrus.WithError(err).Fatal("bind flags")
	}
	return cmd
}

func run(ctx context.Context) error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	issuer := viper.GetString("issuer")
	cryptoKey := viper.GetString("crypto-key")
	if cryptoKey == "" {
		return errors.New("crypto-key is required")
	}

	loginURL := viper.GetString("login-url")
	if loginURL == "" {
		loginURL = issuer + "login"
	}
	store, err := buildStorage(loginURL)
	if err != nil {
		return err
	}

	config := &op.Config{
		CryptoKey:                  sha256.Sum256([]byte(cryptoKey)),
		CodeMethodS256:             true,
		AuthMethodPost:             true,
		GrantTypeRefreshToken:      true,
		GrantTypePassword:          true,
		BlockedRedirectURIPatterns: viper.GetStringSlice("blocked-redirect-uris"),
	}

	opts := []op.Option{
		op.WithAccessEvaluator(policy.NewAttributeEvaluator(
			policy.Rule{ActionName: "authorize"},
		)),
	}
	if viper.GetBool("insecure") {
		opts = append(opts, op.WithAllowInsecure())
	}
	provider, err := op.NewProvider(config, store, issuer, opts...)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	server := &http.Server{
		Addr:    viper.GetString("listen"),
		Handler: provider.HttpHandler(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.WithFields("listen", server.Addr, "issuer", issuer).Info("auric listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Log("SERVER-shutdown").Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func buildStorage(loginURL string) (op.Storage, error) {
	render := func(grantID string) string {
		return loginURL + "?id=" + grantID
	}
	memory, err := storage.NewMemoryStorage(render)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	seedDemoData(memory)

	redisAddr := viper.GetString("redis")
	if redisAddr == "" {
		return memory, nil
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	return storage.NewRedisStorage(client, memory), nil
}

// seedDemoData registers a user and client so a fresh server is
// usable right away. Production deployments register clients through
// the registration endpoint instead.
func seedDemoData(memory *storage.MemoryStorage) {
	memory.AddUser(&storage.User{
		ID:       "id1",
		Username: "test-user@auric",
		Password: "verysecure",
		UserInfo: &oidc.UserInfo{
			Subject: "id1",
			UserInfoProfile: oidc.UserInfoProfile{
				GivenName:  "Test",
				FamilyName: "User",
				Name:       "Test User",
			},
			UserInfoEmail: oidc.UserInfoEmail{
				Email:         "test-user@auric.example",
				EmailVerified: true,
			},
		},
	})
	metadata := &oidc.ClientMetadata{
		RedirectURIs:            []string{"http://localhost:9999/auth/callback"},
		TokenEndpointAuthMethod: oidc.AuthMethodBasic,
		GrantTypes:              []oidc.GrantType{oidc.GrantTypeCode, oidc.GrantTypeRefreshToken},
		ResponseTypes:           []oidc.ResponseType{oidc.ResponseTypeCode},
		Scope:                   oidc.SpaceDelimitedArray{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail, oidc.ScopeOfflineAccess},
	}
	metadata.ApplyDefaults()
	memory.AddClient(&op.ClientRegistration{
		ClientID:     "web",
		ClientSecret: "secret",
		IssuedAt:     time.Now(),
		Metadata:     metadata,
	})
}
