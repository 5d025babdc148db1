package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	cfg := Config{
		ID:             MetaAds,
		AuthorizeURL:   "https://www.facebook.com/v19.0/dialog/oauth",
		Scopes:         []string{"ads_read", "read_insights"},
		ScopeDelimiter: ",",
		ClientID:       "app-123",
	}

	raw := cfg.BuildAuthorizeURL("https://autopilot.example/v1/oauth/meta_ads/callback", "state-token")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "www.facebook.com", u.Host)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "app-123", q.Get("client_id"))
	require.Equal(t, "https://autopilot.example/v1/oauth/meta_ads/callback", q.Get("redirect_uri"))
	require.Equal(t, "ads_read,read_insights", q.Get("scope"))
	require.Equal(t, "state-token", q.Get("state"))
}

func TestScopeDelimiterPerPlatform(t *testing.T) {
	t.Parallel()

	configs := Defaults("m-id", "m-secret", "l-id", "l-secret")
	byID := make(map[string]Config, len(configs))
	for _, c := range configs {
		byID[c.ID] = c
	}

	meta := byID[MetaAds].BuildAuthorizeURL("https://cb.example", "s")
	metaURL, err := url.Parse(meta)
	require.NoError(t, err)
	require.Contains(t, metaURL.Query().Get("scope"), ",")

	li := byID[LinkedInAds].BuildAuthorizeURL("https://cb.example", "s")
	liURL, err := url.Parse(li)
	require.NoError(t, err)
	require.Contains(t, liURL.Query().Get("scope"), " ")
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, Defaults("m", "ms", "l", "ls")...)

	_, ok := reg.Get(MetaAds)
	require.True(t, ok)
	_, ok = reg.Get(LinkedInAds)
	require.True(t, ok)
	_, ok = reg.Get("google_ads")
	require.False(t, ok)

	require.ElementsMatch(t, []string{MetaAds, LinkedInAds}, reg.IDs())
}

func TestExchange(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`))
	}))
	defer srv.Close()

	reg := NewRegistry(srv.Client(), Config{
		ID:           MetaAds,
		TokenURL:     srv.URL,
		ClientID:     "app-123",
		ClientSecret: "shh",
	})

	token, err := reg.Exchange(context.Background(), MetaAds, "auth-code", "https://cb.example")
	require.NoError(t, err)
	require.Equal(t, "at-1", token.AccessToken)
	require.Equal(t, "rt-1", token.RefreshToken)
	require.NotNil(t, token.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(time.Hour), *token.ExpiresAt, 5*time.Second)

	require.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	require.Equal(t, "auth-code", gotForm.Get("code"))
	require.Equal(t, "app-123", gotForm.Get("client_id"))
	require.Equal(t, "shh", gotForm.Get("client_secret"))
}

func TestExchangeUnsupportedPlatform(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	_, err := reg.Exchange(context.Background(), "unknown", "code", "uri")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestExchangeErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	reg := NewRegistry(srv.Client(), Config{ID: MetaAds, TokenURL: srv.URL})
	_, err := reg.Exchange(context.Background(), MetaAds, "bad-code", "uri")
	require.Error(t, err)
}
