package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/pkg/apierr"
	"github.com/agencydesk/autopilot/pkg/httpx"
)

// AuthHandler processes signup, login, and logout.
type AuthHandler struct {
	AuthService *service.AuthService
	Logger      *slog.Logger
}

type signupRequest struct {
	AgencyName string `json:"agency_name"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string          `json:"token"`
	User   userResponse    `json:"user"`
	Agency *agencyResponse `json:"agency,omitempty"`
}

type agencyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleSignup creates an agency with its first user.
//
//	@Summary		Sign up a new agency
//	@Description	Creates an agency and its owner user, returning a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		signupRequest	true	"Agency and owner details"
//	@Success		201		{object}	sessionResponse
//	@Failure		400		{object}	apierr.ErrorResponse
//	@Router			/v1/auth/signup [post]
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	token, user, agency, err := h.AuthService.Signup(r.Context(), req.AgencyName, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			apierr.New(http.StatusBadRequest, apierr.CodeInvalidRequest,
				"agency name, email, and a password of at least 8 characters are required").WriteError(w)
			return
		}
		h.Logger.Error("signup failed", "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{
		Token:  token,
		User:   toUserResponse(user),
		Agency: &agencyResponse{ID: agency.ID, Name: agency.Name},
	})
}

// HandleLogin verifies credentials and issues a session.
//
//	@Summary		Log in
//	@Description	Verifies email and password, returning a session token and setting the session cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	sessionResponse
//	@Failure		400		{object}	apierr.ErrorResponse
//	@Failure		401		{object}	apierr.ErrorResponse
//	@Router			/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	token, user, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized,
				"invalid email or password").WriteError(w)
			return
		}
		h.Logger.Error("login failed", "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}

// HandleLogout clears the session cookie. Sessions are stateless so there is
// nothing to revoke server-side.
//
//	@Summary	Log out
//	@Tags		Auth
//	@Success	204	{string}	string	"cookie cleared"
//	@Router		/v1/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(service.DefaultSessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}
