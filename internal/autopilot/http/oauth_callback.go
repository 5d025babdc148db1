package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/pkg/httpx"
)

// OAuthCallbackHandler completes a platform connection: it consumes the
// state token carried back by the browser, exchanges the authorization code,
// and stores the connection. The browser always ends up back in the app;
// failures are carried as a query parameter, never as a bare error page.
type OAuthCallbackHandler struct {
	ConnectService *service.ConnectService
	Logger         *slog.Logger

	// AppURL is the web UI origin the browser is returned to.
	AppURL string
}

// HandleGet processes the redirect back from the platform.
//
//	@Summary		Platform authorization callback
//	@Description	Consumes the single-use state token and exchanges the
//	@Description	authorization code for platform credentials. The state token is
//	@Description	deleted on consumption; replays, expired tokens, and tokens
//	@Description	issued for another platform all fail identically.
//	@Tags			OAuth
//	@Param			platform	path		string	true	"Platform id (meta_ads or linkedin_ads)"
//	@Param			code		query		string	false	"Authorization code from the platform"
//	@Param			state		query		string	true	"State token issued at authorize time"
//	@Param			error		query		string	false	"Set by the platform when the user denied consent"
//	@Success		302			{string}	string	"Redirect back to the app"
//	@Router			/v1/oauth/{platform}/callback [get]
func (h *OAuthCallbackHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	platformID := r.PathValue("platform")
	query := r.URL.Query()

	// The user clicked deny on the consent screen. Nothing to exchange, but
	// the state token (when still present) is consumed so it cannot be
	// replayed into a later attempt.
	if query.Get("error") != "" {
		if state := query.Get("state"); state != "" {
			if record, err := h.ConnectService.States.Consume(r.Context(), state); err == nil {
				h.Logger.Info("authorization denied by user",
					"platform", platformID, "client_id", record.ClientID)
			}
		}
		h.redirect(w, r, "/connections", url.Values{"error": {"access_denied"}})
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		h.redirect(w, r, "/connections", url.Values{"error": {"connection_failed"}})
		return
	}

	conn, err := h.ConnectService.CompleteAuthorization(r.Context(), platformID, code, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStateNotFound):
			h.Logger.Warn("callback with invalid state", "platform", platformID)
		case errors.Is(err, service.ErrUnsupportedPlatform):
			h.Logger.Warn("callback for unsupported platform", "platform", platformID)
		default:
			h.Logger.Error("complete authorization failed", "platform", platformID, "err", err)
		}
		h.redirect(w, r, "/connections", url.Values{"error": {"connection_failed"}})
		return
	}

	h.Logger.Info("platform connected",
		"platform", platformID, "client_id", conn.ClientID, "connection_id", conn.ID)
	h.redirect(w, r, "/clients/"+conn.ClientID, url.Values{"connected": {platformID}})
}

func (h *OAuthCallbackHandler) redirect(w http.ResponseWriter, r *http.Request, path string, q url.Values) {
	httpx.NoCache(w)
	http.Redirect(w, r, h.AppURL+path+"?"+q.Encode(), http.StatusFound)
}
