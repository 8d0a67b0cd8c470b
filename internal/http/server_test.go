package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/backend/memory"
	"projecthub/internal/core"
	"projecthub/internal/forms"
	"projecthub/internal/log"
	"projecthub/internal/services"
	"projecthub/internal/storage"
)

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Backend == nil {
		deps.Backend = memory.New(memory.DemoSeed())
	}
	srv := NewServer(":0", deps, log.Discard())
	require.NotNil(t, srv.templates, "templates must parse")
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func serve(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// seedProject creates a project directly in the store and returns its id.
func seedProject(t *testing.T, store *memory.Store, companyID int64, title string) int64 {
	t.Helper()
	draft := core.NewProjectDraft()
	draft.CompanyID = companyID
	draft.Title = title
	draft.Budget = decimal.NewNullDecimal(decimal.NewFromInt(150000))
	created, err := store.Create(context.Background(), core.ActionCreateProject, draft)
	require.NoError(t, err)
	return created.ID
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Projecthub")
	assert.Contains(t, body, `id="tab-panel"`)
	assert.Contains(t, body, "Новый проект")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := serve(srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"), path)
	}
	assert.Contains(t, serve(srv, http.MethodGet, "/readyz", nil).Body.String(), `"status":"ready"`)
}

func TestStaticScriptHandlesTriggers(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodGet, "/static/app.js", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	for _, event := range []string{EventFormReset, EventDialogClose, EventNotification} {
		assert.Contains(t, rr.Body.String(), `"`+event+`"`, event)
	}
}

func TestTabs(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	seedProject(t, store, 1, "Сайт для Альфы")
	srv := newTestServer(t, Deps{Backend: store})

	for _, tab := range tabs {
		t.Run(tab.Name, func(t *testing.T) {
			rr := serve(srv, http.MethodGet, "/ui/"+tab.Name, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), `data-tab="`+tab.Name+`"`)
		})
	}

	rr := serve(srv, http.MethodGet, "/ui/projects", nil)
	assert.Contains(t, rr.Body.String(), "Сайт для Альфы")
	assert.Contains(t, rr.Body.String(), "/forms/payment?project_id=")

	rr = serve(srv, http.MethodGet, "/ui/contractors", nil)
	assert.Contains(t, rr.Body.String(), "Мария Дизайнер")

	rr = serve(srv, http.MethodGet, "/ui/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReloadShowsOutOfBandChanges(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	srv := newTestServer(t, Deps{Backend: store})

	rr := serve(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotContains(t, rr.Body.String(), "Портал поставщика")

	seedProject(t, store, 2, "Портал поставщика")

	rr = serve(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Портал поставщика", "page load refetches the dashboard")

	rr = serve(srv, http.MethodGet, "/ui/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Портал поставщика", "tab switch refetches the projects")
}

func TestOpenDialog(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	projectID := seedProject(t, store, 1, "Сайт для Альфы")
	srv := newTestServer(t, Deps{Backend: store})

	rr := serve(srv, http.MethodGet, "/forms/project", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Новый проект")
	assert.Contains(t, body, "ООО Альфа")
	assert.Contains(t, body, `hx-post="/forms/project"`)

	rr = serve(srv, http.MethodGet, "/forms/payment?project_id="+strconv.FormatInt(projectID, 10), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<option value="`+strconv.FormatInt(projectID, 10)+`" selected>Сайт для Альфы</option>`)

	rr = serve(srv, http.MethodGet, "/forms/invoice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmitValidationKeepsInputs(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodPost, "/forms/company", url.Values{"name": {"ООО Гамма"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Заполните обязательные поля: ИНН")
	assert.Contains(t, body, `value="ООО Гамма"`)
	assert.Contains(t, body, "field--invalid")
	assert.Empty(t, rr.Header().Get("HX-Trigger"))

	rr = serve(srv, http.MethodPost, "/forms/project", url.Values{
		"company_id": {"1"}, "title": {"Сайт"}, "budget": {"много"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Проверьте значения: Бюджет")
}

func TestSubmitBackendRejection(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodPost, "/forms/payment", url.Values{
		"project_id":   {"999"},
		"amount":       {"5000"},
		"payment_date": {"2024-05-01"},
		"type":         {"income"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Сервер отклонил запрос (400): project not found")
	assert.Contains(t, rr.Body.String(), `value="5000"`)
}

func TestSubmitSuccess(t *testing.T) {
	journal, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	store := memory.New(memory.DemoSeed())
	srv := newTestServer(t, Deps{
		Backend:   store,
		Submitter: services.NewSubmissionService(store, journal, nil, log.Discard()),
		Activity:  journal,
	})

	// Prime the cached company list.
	rr := serve(srv, http.MethodGet, "/forms/project", nil)
	require.NotContains(t, rr.Body.String(), "ООО Гамма")

	rr = serve(srv, http.MethodPost, "/forms/company", url.Values{"name": {"ООО Гамма"}, "inn": {"7703000000"}})
	require.Equal(t, http.StatusOK, rr.Code)
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, EventDashboardRefresh)
	assert.Contains(t, trigger, EventDialogClose)
	assert.Contains(t, trigger, `"entity":"company"`)
	assert.Contains(t, rr.Body.String(), "Сохранено: Компания")

	rr = serve(srv, http.MethodGet, "/forms/project", nil)
	assert.Contains(t, rr.Body.String(), "ООО Гамма", "company list is refetched after a create")

	rr = serve(srv, http.MethodGet, "/ui/activity", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ООО Гамма · ИНН 7703000000")
	assert.Contains(t, rr.Body.String(), "pending")

	rr = serve(srv, http.MethodGet, "/readyz", nil)
	assert.Contains(t, rr.Body.String(), `"journal":{"pending":1}`)
}

type unknownDraft struct{}

func (unknownDraft) Action() core.Action { return "create-unknown" }
func (unknownDraft) Validate() error { return nil }

func TestSubmitRejectsUnknownDraft(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	srv := newTestServer(t, Deps{Backend: store})

	_, err := srv.submit(context.Background(), forms.KindCompany, unknownDraft{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported draft")

	companies, err := store.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 2, "nothing is posted")
}

func TestLines(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodPost, "/forms/estimate/lines", url.Values{
		"company_id": {"1"}, "title": {"Лендинг"}, "op": {"add-item"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="Лендинг"`)
	assert.Contains(t, body, "Дизайн макета")
	assert.Contains(t, body, "30\u00a0000\u00a0₽")

	rr = serve(srv, http.MethodPost, "/forms/estimate/lines", url.Values{
		"item_id": {"6", "7"}, "quantity": {"2", "3"}, "unit_price": {"30000", "8000"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "84\u00a0000\u00a0₽")

	rr = serve(srv, http.MethodPost, "/forms/estimate/lines", url.Values{"op": {"remove-item"}, "index": {"first"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(srv, http.MethodPost, "/forms/company/lines", url.Values{})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(srv, http.MethodPost, "/forms/payment/lines", url.Values{"type": {"expense"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="contractor_id"`)
}

func TestExportAnalytics(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	seedProject(t, store, 1, "Сайт для Альфы")
	srv := newTestServer(t, Deps{Backend: store})

	rr := serve(srv, http.MethodGet, "/export/analytics.xlsx", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "analytics-")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "PK"), "xlsx is a zip archive")
}

func TestCompanyProjects(t *testing.T) {
	store := memory.New(memory.DemoSeed())
	seedProject(t, store, 1, "Сайт для Альфы")
	srv := newTestServer(t, Deps{Backend: store})

	rr := serve(srv, http.MethodGet, "/ui/companies/1/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Сайт для Альфы")

	rr = serve(srv, http.MethodGet, "/ui/companies/2/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "У компании нет проектов")

	rr = serve(srv, http.MethodGet, "/ui/companies/abc/projects", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestActivityDisabled(t *testing.T) {
	srv := newTestServer(t, Deps{})

	rr := serve(srv, http.MethodGet, "/ui/activity", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Журнал отключен")
}

func TestSubmitRateLimited(t *testing.T) {
	srv := newTestServer(t, Deps{})

	var last *httptest.ResponseRecorder
	for range submitLimit + 1 {
		last = serve(srv, http.MethodPost, "/forms/company", url.Values{})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	trigger := last.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, EventNotification)
	assert.Contains(t, trigger, `"type":"error"`)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/healthz", nil).Code)
}
