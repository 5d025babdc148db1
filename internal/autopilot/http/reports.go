package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/pkg/apierr"
	"github.com/agencydesk/autopilot/pkg/httpx"
)

// ReportsHandler requests report compilation and serves report status.
type ReportsHandler struct {
	ReportService *service.ReportService
	Logger        *slog.Logger
}

type requestReportRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type reportResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Status      string    `json:"status"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type requestReportResponse struct {
	Report      reportResponse `json:"report"`
	StatusToken string         `json:"status_token"`
}

type reportStatusResponse struct {
	Status      string `json:"status"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// HandleRequest creates a report and starts compiling it in the background.
//
//	@Summary		Request a report
//	@Description	Creates a pending report for the period and begins compilation.
//	@Description	The returned status_token is shown exactly once; it grants
//	@Description	status polling without a session.
//	@Tags			Reports
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Client id"
//	@Param			body	body		requestReportRequest	false	"Reporting period; defaults to the last 30 days"
//	@Success		202		{object}	requestReportResponse
//	@Failure		400		{object}	apierr.ErrorResponse
//	@Failure		403		{object}	apierr.ErrorResponse
//	@Router			/v1/clients/{id}/reports [post]
func (h *ReportsHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req requestReportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.ErrInvalidRequest.WriteError(w)
			return
		}
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		req.PeriodEnd = time.Now()
		req.PeriodStart = req.PeriodEnd.Add(-30 * 24 * time.Hour)
	}

	report, statusToken, err := h.ReportService.Request(r.Context(),
		r.PathValue("id"), userID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		writeServiceError(w, h.Logger, "request report", err)
		return
	}

	// The compile pipeline outlives this request; it runs on a background
	// context and records its own outcome on the report row.
	go func() {
		if err := h.ReportService.Compile(context.Background(), report.ID); err != nil {
			h.Logger.Warn("background compile failed", "report_id", report.ID, "err", err)
		}
	}()

	httpx.WriteJSON(w, http.StatusAccepted, requestReportResponse{
		Report:      toReportResponse(report),
		StatusToken: statusToken,
	})
}

// HandleList returns a client's reports.
//
//	@Summary	List reports
//	@Tags		Reports
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{array}		reportResponse
//	@Failure	403	{object}	apierr.ErrorResponse
//	@Router		/v1/clients/{id}/reports [get]
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	reports, err := h.ReportService.List(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "list reports", err)
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportResponse(rep))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleStatus serves the public status endpoint. No session is needed; the
// opaque token in the path is the credential.
//
//	@Summary		Poll report status
//	@Description	Resolves a status token to the report's current pipeline
//	@Description	status. Unknown tokens 404; no report detail beyond status and
//	@Description	artifact URL is exposed.
//	@Tags			Reports
//	@Produce		json
//	@Param			token	path		string	true	"Status token from report creation"
//	@Success		200		{object}	reportStatusResponse
//	@Failure		404		{object}	apierr.ErrorResponse
//	@Router			/v1/reports/status/{token} [get]
func (h *ReportsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.ReportService.StatusByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, h.Logger, "report status", err)
		return
	}

	resp := reportStatusResponse{Status: report.Status}
	if report.Status == domain.ReportStatusSent {
		resp.ArtifactURL = report.ArtifactURL
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toReportResponse(rep domain.Report) reportResponse {
	return reportResponse{
		ID:          rep.ID,
		ClientID:    rep.ClientID,
		PeriodStart: rep.PeriodStart,
		PeriodEnd:   rep.PeriodEnd,
		Status:      rep.Status,
		ArtifactURL: rep.ArtifactURL,
		Error:       rep.Error,
		CreatedAt:   rep.CreatedAt,
	}
}
