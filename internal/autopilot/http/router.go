// Package http wires the service layer to the network: route registration,
// per-route rate limits, session authentication, and the JSON error surface.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/obs"
	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/httpx"
	"github.com/agencydesk/autopilot/pkg/jwtx"
	"github.com/agencydesk/autopilot/pkg/slogx"

	_ "github.com/agencydesk/autopilot/api/autopilot" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// LoginURL is where unauthenticated browser flows are redirected.
	LoginURL string

	// AppURL is the web UI origin OAuth callbacks return the browser to.
	AppURL string

	AuthService    *service.AuthService
	ClientService  *service.ClientService
	ConnectService *service.ConnectService
	ReportService  *service.ReportService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		obs.Instrument,
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerClients()
	r.registerReports()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			AgencyDesk Autopilot API
//	@version		0.1.0
//	@description	Reporting autopilot for marketing agencies: connect a client's
//	@description	ad platform accounts via OAuth, compile periodic PDF performance
//	@description	reports, and deliver them to the client's recipients by email.
//
//	@contact.name				AgencyDesk Team
//	@contact.url				https://github.com/agencydesk/autopilot
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Logger: r.logger}

	// Signup and login take credentials; strict limits against brute force.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerOAuth() {
	authorize := &OAuthAuthorizeHandler{
		ConnectService: r.ConnectService,
		Verifier:       r.verifier,
		LoginURL:       r.LoginURL,
		Logger:         r.logger,
	}
	callback := &OAuthCallbackHandler{
		ConnectService: r.ConnectService,
		Logger:         r.logger,
		AppURL:         r.AppURL,
	}

	// Both legs are browser redirects; lenient limits keep retries cheap
	// while still bounding abuse.
	r.Mux.Handle("GET /v1/oauth/{platform}/authorize",
		httpx.Chain(http.HandlerFunc(authorize.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/oauth/{platform}/callback",
		httpx.Chain(http.HandlerFunc(callback.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService, Logger: r.logger}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/clients", secured(h.HandleCreate))
	r.Mux.Handle("GET /v1/clients", secured(h.HandleList))
	r.Mux.Handle("GET /v1/clients/{id}", secured(h.HandleGet))
	r.Mux.Handle("PATCH /v1/clients/{id}/schedule", secured(h.HandleUpdateSchedule))
	r.Mux.Handle("DELETE /v1/clients/{id}", secured(h.HandleDelete))

	r.Mux.Handle("POST /v1/clients/{id}/recipients", secured(h.HandleAddRecipient))
	r.Mux.Handle("GET /v1/clients/{id}/recipients", secured(h.HandleListRecipients))
	r.Mux.Handle("DELETE /v1/clients/{id}/recipients/{recipient_id}", secured(h.HandleRemoveRecipient))

	r.Mux.Handle("GET /v1/clients/{id}/connections", secured(h.HandleListConnections))
	r.Mux.Handle("DELETE /v1/clients/{id}/connections/{connection_id}", secured(h.HandleRemoveConnection))
}

func (r *Router) registerReports() {
	h := &ReportsHandler{ReportService: r.ReportService, Logger: r.logger}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/clients/{id}/reports", secured(h.HandleRequest))
	r.Mux.Handle("GET /v1/clients/{id}/reports", secured(h.HandleList))

	// Public status polling; the token is the credential.
	r.Mux.Handle("GET /v1/reports/status/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", obs.Handler())
}
