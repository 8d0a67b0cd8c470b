package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"projecthub/internal/backend/remote"
	"projecthub/internal/export"
	"projecthub/internal/forms"
	"projecthub/internal/log"
)

// activityLimit is the number of journal entries shown in the feed.
const activityLimit = 10

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the templates and that the backend answers the stats
// endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, err := s.backend.Stats(ctx); err != nil {
		checks["backend"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["backend"] = "ok"
	}

	if j, ok := s.activity.(journalHealth); ok {
		checks["journal"] = journalCheck(ctx, j)
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}
	checks["security"] = s.security.snapshot()

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// journalCheck reports entry counts per status. A broken journal only
// degrades the activity feed, so it does not fail readiness.
func journalCheck(ctx context.Context, j journalHealth) any {
	if err := j.Ping(ctx); err != nil {
		return "failed: " + err.Error()
	}
	counts, err := j.Counts(ctx)
	if err != nil {
		return "failed: " + err.Error()
	}
	return counts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleIndex renders the page shell with the dashboard tab.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view := pageView{
		tabView: s.tabView(ctx, "dashboard"),
		Tabs:    tabs,
		Kinds:   forms.Kinds,
	}
	s.render(w, r, http.StatusOK, "page", view)
}

// handleTab renders one tab partial from a fresh snapshot.
func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	tab := r.PathValue("tab")
	if !validTab(tab) {
		NotFoundError("Раздел не найден").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view := s.tabView(ctx, tab)
	s.render(w, r, http.StatusOK, "tab_"+tab, view)
}

// tabView refetches every dashboard document for a tab. Concurrent
// renders share one fetch. A failed refresh keeps the last good snapshot
// and reports the failure as a banner.
func (s *Server) tabView(ctx context.Context, tab string) tabView {
	snap, err := s.loader.Refresh(ctx)
	view := tabView{Tab: tab, Snap: snap}
	if err != nil {
		view.Stale = remote.Describe(err)
	}
	return view
}

// handleCompanyProjects renders the projects of one company.
func (s *Server) handleCompanyProjects(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequestError("Некорректный идентификатор компании").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view := companyProjectsView{CompanyID: id}
	projects, err := s.refs.CompanyProjects(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Company projects fetch failed",
			log.FieldEntityID, id,
			log.FieldError, err)
		view.Error = remote.Describe(err)
		s.render(w, r, http.StatusBadGateway, "company_projects", view)
		return
	}
	view.Projects = projects
	s.render(w, r, http.StatusOK, "company_projects", view)
}

// handleActivity renders the recent submissions from the local journal.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	view := activityView{Enabled: s.activity != nil}
	if s.activity != nil {
		entries, err := s.activity.ListRecent(r.Context(), activityLimit)
		if err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Activity list failed",
				log.FieldErrorType, log.ErrorTypeDatabase,
				log.FieldError, err)
			view.Error = "Не удалось загрузить журнал"
		}
		view.Entries = entries
	}
	s.render(w, r, http.StatusOK, "activity", view)
}

// handleExportAnalytics streams the analytics workbook built from a fresh
// snapshot, or the last good one when the refresh fails.
func (s *Server) handleExportAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	logger := log.FromContext(ctx).WithComponent(log.ComponentExport).With(log.FieldOperation, log.OpExport)

	snap, err := s.loader.Refresh(ctx)
	if err != nil {
		if !snap.Loaded() {
			logger.ErrorContext(ctx, "Export without data", log.FieldError, err)
			ErrorResponse(http.StatusBadGateway, remote.Describe(err)).Write(w)
			return
		}
		logger.WarnContext(ctx, "Exporting last good snapshot", log.FieldError, err)
	}

	now := time.Now()
	data, err := export.AnalyticsWorkbook(snap.Stats, snap.Projects, now)
	if err != nil {
		logger.ErrorContext(ctx, "Workbook generation failed", log.FieldError, err)
		InternalServerError("Не удалось сформировать файл").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
