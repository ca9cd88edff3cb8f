package mock

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

func NewClient(t *testing.T) op.Client {
	return NewMockClient(gomock.NewController(t))
}

func NewClientExpectAny(t *testing.T, appType string) op.Client {
	c := NewClient(t)
	m := c.(*MockClient)
	m.EXPECT().RedirectURIs().AnyTimes().Return([]string{
		"https://registered.com/callback",
		"http://registered.com/callback",
		"http://localhost:9999/callback",
		"custom://callback",
	})
	m.EXPECT().RedirectURIGlobs().AnyTimes().Return(nil)
	m.EXPECT().Metadata().AnyTimes().Return(&oidc.ClientMetadata{ApplicationType: appType})
	m.EXPECT().LoginURL(gomock.Any()).AnyTimes().DoAndReturn(
		func(id string) string {
			return "login?id=" + id
		})
	m.EXPECT().IsScopeAllowed(gomock.Any()).AnyTimes().Return(false)
	return c
}

func NewClientWithRedirects(t *testing.T, appType string, uris, globs []string) op.Client {
	c := NewClient(t)
	m := c.(*MockClient)
	m.EXPECT().RedirectURIs().AnyTimes().Return(uris)
	m.EXPECT().RedirectURIGlobs().AnyTimes().Return(globs)
	m.EXPECT().Metadata().AnyTimes().Return(&oidc.ClientMetadata{ApplicationType: appType})
	return c
}
