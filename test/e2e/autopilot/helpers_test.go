package autopilot_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "github.com/agencydesk/autopilot/internal/autopilot/http"
	"github.com/agencydesk/autopilot/internal/autopilot/insights"
	"github.com/agencydesk/autopilot/internal/autopilot/mailer"
	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/agencydesk/autopilot/internal/autopilot/renderer"
	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/internal/autopilot/store/drivers/sqlite"
	"github.com/agencydesk/autopilot/pkg/jwtx"
	"github.com/agencydesk/autopilot/pkg/slogx"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for autopilot end-to-end tests. The full stack (store,
 * services, router) runs in-process against an in-memory database, with
 * httptest servers standing in for the ad platforms, the PDF renderer, and
 * the email provider.
 */

const (
	agencyName = "Acme Media"
	ownerEmail = "owner@acme.test"
	ownerPass  = "Admin123!pass"
)

// testStack is one fully wired application instance.
type testStack struct {
	Server *httptest.Server
	Store  *sqlite.Store

	// Fakes for the external services.
	PlatformAPI *httptest.Server
	SentMail    *[]map[string]any
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	// Fake ad platform: one mux serves the token endpoint and the insights
	// endpoint.
	platformMux := http.NewServeMux()
	platformMux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"e2e-access","refresh_token":"e2e-refresh","expires_in":3600}`))
	})
	platformMux.HandleFunc("GET /insights", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"campaign":"Spring Sale","impressions":1000,"clicks":50,"spend_cents":12345,"ctr":5.0}]}`))
	})
	platformAPI := httptest.NewServer(platformMux)
	t.Cleanup(platformAPI.Close)

	// Fake renderer.
	rendererSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://artifacts.test/report.pdf"}`))
	}))
	t.Cleanup(rendererSrv.Close)

	// Fake email provider, recording every send.
	var sent []map[string]any
	mailerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		sent = append(sent, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	t.Cleanup(mailerSrv.Close)

	sessions := jwtx.NewHS256([]byte("e2e-secret"), "autopilot-e2e")
	logger := slogx.Discard()

	registry := platform.NewRegistry(nil, platform.Config{
		ID:             platform.MetaAds,
		Name:           "Meta Ads",
		AuthorizeURL:   platformAPI.URL + "/dialog/oauth",
		TokenURL:       platformAPI.URL + "/token",
		Scopes:         []string{"ads_read"},
		ScopeDelimiter: ",",
		ClientID:       "e2e-app",
		ClientSecret:   "e2e-secret",
	})

	states := &service.StateService{Store: st}
	connect := &service.ConnectService{Store: st, States: states, Registry: registry}
	reports := &service.ReportService{
		Store:    st,
		Insights: insights.New(nil).WithEndpoint(platform.MetaAds, platformAPI.URL+"/insights"),
		Renderer: renderer.New(rendererSrv.URL, "renderer-key", nil),
		Mailer:   mailer.New(mailerSrv.URL, "mailer-key", "reports@acme.test", nil),
		Logger:   logger,
	}

	router := httpapi.NewRouter(sessions, "e2e", st, logger)
	router.AuthService = &service.AuthService{Store: st, Signer: sessions}
	router.ClientService = &service.ClientService{Store: st}
	router.ConnectService = connect
	router.ReportService = reports
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// The service's public base URL is only known once the listener is up.
	connect.BaseURL = server.URL
	router.LoginURL = server.URL + "/login"
	router.AppURL = server.URL

	return &testStack{
		Server:      server,
		Store:       st,
		PlatformAPI: platformAPI,
		SentMail:    &sent,
	}
}

// noRedirectClient returns an HTTP client that surfaces redirects instead of
// following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// doJSON sends a JSON request and decodes the JSON response into out.
func doJSON(t *testing.T, method, url, token string, in, out any) *http.Response {
	t.Helper()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signupOwner registers the test agency and returns the session token and
// agency id.
func signupOwner(t *testing.T, stack *testStack) (token, agencyID string) {
	t.Helper()

	var resp struct {
		Token  string `json:"token"`
		Agency struct {
			ID string `json:"id"`
		} `json:"agency"`
	}
	r := doJSON(t, http.MethodPost, stack.Server.URL+"/v1/auth/signup", "", map[string]string{
		"agency_name": agencyName,
		"name":        "Owner",
		"email":       ownerEmail,
		"password":    ownerPass,
	}, &resp)
	require.Equal(t, http.StatusCreated, r.StatusCode)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.Agency.ID)

	return resp.Token, resp.Agency.ID
}

// createClient provisions a client over the API.
func createClient(t *testing.T, stack *testStack, token, agencyID, name string) string {
	t.Helper()

	var resp struct {
		ID string `json:"id"`
	}
	r := doJSON(t, http.MethodPost, stack.Server.URL+"/v1/clients", token, map[string]string{
		"agency_id": agencyID,
		"name":      name,
	}, &resp)
	require.Equal(t, http.StatusCreated, r.StatusCode)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

// connectPlatform drives the full browser flow: authorize redirect, then the
// platform's callback with code and state.
func connectPlatform(t *testing.T, stack *testStack, token, clientID, agencyID string) {
	t.Helper()
	client := noRedirectClient()

	authorizeURL := fmt.Sprintf("%s/v1/oauth/%s/authorize?clientId=%s&agencyId=%s",
		stack.Server.URL, platform.MetaAds, clientID, agencyID)
	req, err := http.NewRequest(http.MethodGet, authorizeURL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	consent, err := resp.Location()
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	callbackURL := fmt.Sprintf("%s/v1/oauth/%s/callback?code=e2e-code&state=%s",
		stack.Server.URL, platform.MetaAds, state)
	resp2, err := client.Get(callbackURL)
	require.NoError(t, err)
	_ = resp2.Body.Close()
	require.Equal(t, http.StatusFound, resp2.StatusCode)

	back, err := resp2.Location()
	require.NoError(t, err)
	require.Equal(t, platform.MetaAds, back.Query().Get("connected"))
}

// waitForStatus polls the public status endpoint until the report reaches a
// terminal status or the deadline passes.
func waitForStatus(t *testing.T, stack *testStack, statusToken string, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var status struct {
			Status      string `json:"status"`
			ArtifactURL string `json:"artifact_url"`
		}
		r := doJSON(t, http.MethodGet, stack.Server.URL+"/v1/reports/status/"+statusToken, "", nil, &status)
		require.Equal(t, http.StatusOK, r.StatusCode)

		if status.Status == want {
			return
		}
		if status.Status == "failed" && want != "failed" {
			t.Fatalf("report failed while waiting for %q", want)
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("report never reached status %q", want)
}
