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

// ClientsHandler manages clients, their recipients, and their connections.
// All endpoints sit behind AuthnMiddleware; the user id comes from context.
type ClientsHandler struct {
	ClientService *service.ClientService
	Logger        *slog.Logger
}

type createClientRequest struct {
	AgencyID string `json:"agency_id"`
	Name     string `json:"name"`
	Schedule string `json:"schedule,omitempty"`
}

type updateScheduleRequest struct {
	Schedule string `json:"schedule"`
}

type addRecipientRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	AgencyID  string    `json:"agency_id"`
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	CreatedAt time.Time `json:"created_at"`
}

type recipientResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type connectionResponse struct {
	ID        string     `json:"id"`
	Platform  string     `json:"platform"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// writeServiceError maps service errors onto the JSON error surface.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		apierr.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrNotAgencyMember):
		apierr.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		apierr.ErrNotFound.WriteError(w)
	default:
		logger.Error(op+" failed", "err", err)
		apierr.ErrServerError.WriteError(w)
	}
}

// HandleCreate adds a client under the caller's agency.
//
//	@Summary	Create a client
//	@Tags		Clients
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		createClientRequest	true	"Client details"
//	@Success	201		{object}	clientResponse
//	@Failure	400		{object}	apierr.ErrorResponse
//	@Failure	403		{object}	apierr.ErrorResponse
//	@Router		/v1/clients [post]
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgencyID == "" {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	client, err := h.ClientService.CreateClient(r.Context(), req.AgencyID, userID, req.Name, req.Schedule)
	if err != nil {
		writeServiceError(w, h.Logger, "create client", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// HandleList returns the agency's clients.
//
//	@Summary	List clients
//	@Tags		Clients
//	@Produce	json
//	@Security	BearerAuth
//	@Param		agency_id	query		string	true	"Agency id"
//	@Success	200			{array}		clientResponse
//	@Failure	403			{object}	apierr.ErrorResponse
//	@Router		/v1/clients [get]
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	agencyID := r.URL.Query().Get("agency_id")
	if agencyID == "" {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	clients, err := h.ClientService.ListClients(r.Context(), agencyID, userID)
	if err != nil {
		writeServiceError(w, h.Logger, "list clients", err)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one client.
//
//	@Summary	Get a client
//	@Tags		Clients
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{object}	clientResponse
//	@Failure	404	{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id} [get]
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	client, err := h.ClientService.GetClient(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "get client", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleUpdateSchedule changes a client's report schedule.
//
//	@Summary	Update a client's report schedule
//	@Tags		Clients
//	@Accept		json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Client id"
//	@Param		body	body		updateScheduleRequest	true	"New schedule: none, weekly, or monthly"
//	@Success	204		{string}	string					"schedule updated"
//	@Failure	400		{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/schedule [patch]
func (h *ClientsHandler) HandleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.ClientService.UpdateSchedule(r.Context(), r.PathValue("id"), userID, req.Schedule); err != nil {
		writeServiceError(w, h.Logger, "update schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a client and everything attached to it.
//
//	@Summary	Delete a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Client id"
//	@Success	204	{string}	string	"client deleted"
//	@Failure	404	{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id} [delete]
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.ClientService.DeleteClient(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, h.Logger, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddRecipient adds a report recipient to a client.
//
//	@Summary	Add a report recipient
//	@Tags		Clients
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Client id"
//	@Param		body	body		addRecipientRequest	true	"Recipient details"
//	@Success	201		{object}	recipientResponse
//	@Failure	400		{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/recipients [post]
func (h *ClientsHandler) HandleAddRecipient(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req addRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrInvalidRequest.WriteError(w)
		return
	}

	recipient, err := h.ClientService.AddRecipient(r.Context(), r.PathValue("id"), userID, req.Email, req.Name)
	if err != nil {
		writeServiceError(w, h.Logger, "add recipient", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, recipientResponse{
		ID: recipient.ID, Email: recipient.Email, Name: recipient.Name,
	})
}

// HandleListRecipients returns a client's recipients.
//
//	@Summary	List report recipients
//	@Tags		Clients
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{array}		recipientResponse
//	@Failure	404	{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/recipients [get]
func (h *ClientsHandler) HandleListRecipients(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	recipients, err := h.ClientService.ListRecipients(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "list recipients", err)
		return
	}

	out := make([]recipientResponse, 0, len(recipients))
	for _, rec := range recipients {
		out = append(out, recipientResponse{ID: rec.ID, Email: rec.Email, Name: rec.Name})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRemoveRecipient deletes a recipient.
//
//	@Summary	Remove a report recipient
//	@Tags		Clients
//	@Security	BearerAuth
//	@Param		id				path		string	true	"Client id"
//	@Param		recipient_id	path		string	true	"Recipient id"
//	@Success	204				{string}	string	"recipient removed"
//	@Failure	404				{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/recipients/{recipient_id} [delete]
func (h *ClientsHandler) HandleRemoveRecipient(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	err := h.ClientService.RemoveRecipient(r.Context(), r.PathValue("id"), r.PathValue("recipient_id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "remove recipient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListConnections returns a client's platform connections. Token
// material is never included.
//
//	@Summary	List platform connections
//	@Tags		Clients
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{array}		connectionResponse
//	@Failure	404	{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/connections [get]
func (h *ClientsHandler) HandleListConnections(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	conns, err := h.ClientService.ListConnections(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "list connections", err)
		return
	}

	out := make([]connectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, connectionResponse{
			ID: c.ID, Platform: c.Platform, ExpiresAt: c.ExpiresAt, CreatedAt: c.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRemoveConnection disconnects a platform.
//
//	@Summary	Remove a platform connection
//	@Tags		Clients
//	@Security	BearerAuth
//	@Param		id				path		string	true	"Client id"
//	@Param		connection_id	path		string	true	"Connection id"
//	@Success	204				{string}	string	"connection removed"
//	@Failure	404				{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/connections/{connection_id} [delete]
func (h *ClientsHandler) HandleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	err := h.ClientService.RemoveConnection(r.Context(), r.PathValue("id"), r.PathValue("connection_id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "remove connection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		AgencyID:  c.AgencyID,
		Name:      c.Name,
		Schedule:  c.Schedule,
		CreatedAt: c.CreatedAt,
	}
}
