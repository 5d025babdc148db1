package autopilot_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	stack := newTestStack(t)

	resp, err := http.Get(stack.Server.URL + "/livez")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(stack.Server.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFlow(t *testing.T) {
	stack := newTestStack(t)
	signupOwner(t, stack)

	var resp struct {
		Token string `json:"token"`
	}
	r := doJSON(t, http.MethodPost, stack.Server.URL+"/v1/auth/login", "", map[string]string{
		"email":    ownerEmail,
		"password": ownerPass,
	}, &resp)
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.NotEmpty(t, resp.Token)

	r = doJSON(t, http.MethodPost, stack.Server.URL+"/v1/auth/login", "", map[string]string{
		"email":    ownerEmail,
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestConnectionFlow(t *testing.T) {
	stack := newTestStack(t)
	token, agencyID := signupOwner(t, stack)
	clientID := createClient(t, stack, token, agencyID, "Bluebird Coffee")

	connectPlatform(t, stack, token, clientID, agencyID)

	var conns []struct {
		Platform string `json:"platform"`
	}
	r := doJSON(t, http.MethodGet, stack.Server.URL+"/v1/clients/"+clientID+"/connections", token, nil, &conns)
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.Len(t, conns, 1)
	require.Equal(t, platform.MetaAds, conns[0].Platform)

	// The single-use state is gone; nothing is left to replay.
	count, err := stack.Store.OAuthStates().CountStates(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestClientsRequireSession(t *testing.T) {
	stack := newTestStack(t)

	r := doJSON(t, http.MethodGet, stack.Server.URL+"/v1/clients?agency_id=any", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestReportFlow(t *testing.T) {
	stack := newTestStack(t)
	token, agencyID := signupOwner(t, stack)
	clientID := createClient(t, stack, token, agencyID, "Bluebird Coffee")

	connectPlatform(t, stack, token, clientID, agencyID)

	r := doJSON(t, http.MethodPost, stack.Server.URL+"/v1/clients/"+clientID+"/recipients", token, map[string]string{
		"email": "cmo@bluebird.test",
		"name":  "CMO",
	}, nil)
	require.Equal(t, http.StatusCreated, r.StatusCode)

	var requested struct {
		Report struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"report"`
		StatusToken string `json:"status_token"`
	}
	r = doJSON(t, http.MethodPost, stack.Server.URL+"/v1/clients/"+clientID+"/reports", token, nil, &requested)
	require.Equal(t, http.StatusAccepted, r.StatusCode)
	require.NotEmpty(t, requested.StatusToken)

	waitForStatus(t, stack, requested.StatusToken, "sent")

	// One delivery went out through the fake provider.
	require.Len(t, *stack.SentMail, 1)
	require.Equal(t, "cmo@bluebird.test", (*stack.SentMail)[0]["to"])

	var reports []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		ArtifactURL string `json:"artifact_url"`
	}
	r = doJSON(t, http.MethodGet, stack.Server.URL+"/v1/clients/"+clientID+"/reports", token, nil, &reports)
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.Len(t, reports, 1)
	require.Equal(t, "sent", reports[0].Status)
	require.Equal(t, "https://artifacts.test/report.pdf", reports[0].ArtifactURL)
}

func TestTenantIsolation(t *testing.T) {
	stack := newTestStack(t)
	token, agencyID := signupOwner(t, stack)
	clientID := createClient(t, stack, token, agencyID, "Bluebird Coffee")

	// A second agency signs up and tries to read the first one's client.
	var other struct {
		Token string `json:"token"`
	}
	r := doJSON(t, http.MethodPost, stack.Server.URL+"/v1/auth/signup", "", map[string]string{
		"agency_name": "Rival Agency",
		"name":        "Rival",
		"email":       "rival@rival.test",
		"password":    "Rival123!pass",
	}, &other)
	require.Equal(t, http.StatusCreated, r.StatusCode)

	r = doJSON(t, http.MethodGet, stack.Server.URL+"/v1/clients/"+clientID, other.Token, nil, nil)
	require.Equal(t, http.StatusForbidden, r.StatusCode)

	r = doJSON(t, http.MethodGet, stack.Server.URL+"/v1/clients?agency_id="+agencyID, other.Token, nil, nil)
	require.Equal(t, http.StatusForbidden, r.StatusCode)
}
