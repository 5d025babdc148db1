package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/pkg/apierr"
	"github.com/agencydesk/autopilot/pkg/httpx"
	"github.com/agencydesk/autopilot/pkg/jwtx"
)

// OAuthAuthorizeHandler starts a platform connection: it validates the
// request, issues a state token, and redirects the browser to the
// platform's consent screen.
type OAuthAuthorizeHandler struct {
	ConnectService *service.ConnectService
	Verifier       jwtx.Verifier
	LoginURL       string
	Logger         *slog.Logger
}

// HandleGet processes GET requests to the authorize endpoint.
//
//	@Summary		Start a platform authorization
//	@Description	Issues a single-use state token bound to the client, agency,
//	@Description	platform, and initiating user, then redirects the browser to the
//	@Description	platform's consent screen. Without a session the browser is sent
//	@Description	to the login page with a return URL instead.
//	@Tags			OAuth
//	@Produce		json
//	@Param			platform	path		string	true	"Platform id (meta_ads or linkedin_ads)"
//	@Param			clientId	query		string	true	"Client to connect the account to"
//	@Param			agencyId	query		string	true	"Agency that owns the client"
//	@Success		302			{string}	string	"Redirect to the platform consent screen"
//	@Failure		400			{object}	apierr.ErrorResponse
//	@Failure		403			{object}	apierr.ErrorResponse
//	@Router			/v1/oauth/{platform}/authorize [get]
func (h *OAuthAuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	platformID := r.PathValue("platform")
	clientID := r.URL.Query().Get("clientId")
	agencyID := r.URL.Query().Get("agencyId")

	// Parameter validation happens before any session or store work so a
	// malformed request never costs a lookup.
	if clientID == "" || agencyID == "" {
		apierr.New(http.StatusBadRequest, apierr.CodeInvalidRequest,
			"Missing clientId or agencyId").WriteError(w)
		return
	}

	userID, ok := h.resolveSession(r)
	if !ok {
		h.redirectToLogin(w, r)
		return
	}

	consentURL, err := h.ConnectService.BeginAuthorization(r.Context(), platformID, clientID, agencyID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedPlatform):
			apierr.New(http.StatusBadRequest, apierr.CodeInvalidRequest,
				"unsupported platform").WriteError(w)
		case errors.Is(err, service.ErrNotAgencyMember):
			apierr.ErrUnauthorized.WriteError(w)
		case errors.Is(err, service.ErrNotFound):
			apierr.ErrNotFound.WriteError(w)
		default:
			h.Logger.Error("begin authorization failed", "platform", platformID, "err", err)
			apierr.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, consentURL, http.StatusFound)
}

// resolveSession returns the authenticated user id, if any. The authorize
// endpoint cannot sit behind AuthnMiddleware because an expired session must
// turn into a login redirect rather than a bearer 401.
func (h *OAuthAuthorizeHandler) resolveSession(r *http.Request) (string, bool) {
	raw := httpx.ExtractSessionToken(r)
	if raw == "" {
		return "", false
	}
	claims, err := h.Verifier.Verify(raw)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func (h *OAuthAuthorizeHandler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	q.Set("return_to", r.URL.RequestURI())

	httpx.NoCache(w)
	http.Redirect(w, r, h.LoginURL+"?"+q.Encode(), http.StatusFound)
}
