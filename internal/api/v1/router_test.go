package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/errs"
	"github.com/sefa-b/bank-registry/internal/repository/repotest"
	"github.com/sefa-b/bank-registry/internal/service"
	"github.com/sefa-b/bank-registry/internal/utils"
)

type testEnv struct {
	handler http.Handler
	banks   *repotest.BanksRepo
	audit   *repotest.AuditRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos, banks, audit := repotest.NewRepositories()
	svc := service.NewBankService(repos, nil, nil)
	return &testEnv{
		handler: NewRouter(Deps{Banks: svc}).Handler(),
		banks:   banks,
		audit:   audit,
	}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createJSON(t *testing.T, name, location string) domain.Bank {
	t.Helper()
	body, _ := json.Marshal(domain.BankRequest{Name: name, Location: location})
	rec := e.do(t, http.MethodPost, "/api/banks", "application/json", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var bank domain.Bank
	if err := json.Unmarshal(rec.Body.Bytes(), &bank); err != nil {
		t.Fatalf("create: invalid JSON: %v", err)
	}
	return bank
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestAPICreate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/banks", "application/json", `{"name":"Alpha Bank","location":"Springfield"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var bank domain.Bank
	if err := json.Unmarshal(rec.Body.Bytes(), &bank); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if bank.ID == 0 || bank.Name != "Alpha Bank" || bank.Location != "Springfield" {
		t.Errorf("unexpected body %+v", bank)
	}
	if got := rec.Header().Get("Location"); got != "/api/banks/1" {
		t.Errorf("expected Location /api/banks/1, got %q", got)
	}
}

func TestAPICreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"location":"Springfield"}`, "name: field is required"},
		{"missing location", `{"name":"Alpha"}`, "location: field is required"},
		{"blank name", `{"name":"   ","location":"Springfield"}`, "name: field is required"},
		{"empty body", ``, "name: field is required"},
		{"malformed json", `{"name":`, "invalid JSON body"},
		{"trailing value", `{"name":"A","location":"B"} {"name":"evil"}`, "invalid JSON body"},
		{"too long", `{"name":"` + strings.Repeat("x", 101) + `","location":"Springfield"}`, "name: must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/banks", "application/json", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error != tt.message || body.Code != "invalid_input" {
				t.Errorf("unexpected error body %+v", body)
			}
			if env.banks.Inserts != 0 {
				t.Error("invalid request reached storage")
			}
		})
	}
}

func TestAPIListOrdered(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/banks", "", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %d %q", rec.Code, rec.Body.String())
	}

	env.createJSON(t, "A", "X")
	env.createJSON(t, "B", "Y")

	rec = env.do(t, http.MethodGet, "/api/banks", "", "")
	var banks []domain.Bank
	if err := json.Unmarshal(rec.Body.Bytes(), &banks); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(banks) != 2 || banks[0].Name != "A" || banks[1].Name != "B" {
		t.Errorf("unexpected list %+v", banks)
	}
}

func TestAPIGet(t *testing.T) {
	env := newTestEnv(t)
	created := env.createJSON(t, "Alpha", "Springfield")

	rec := env.do(t, http.MethodGet, "/api/banks/1", "", "")
	var got domain.Bank
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if rec.Code != http.StatusOK || got != created {
		t.Errorf("expected %+v, got %d %+v", created, rec.Code, got)
	}
}

func TestAPINotFound(t *testing.T) {
	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/banks/999", ""},
		{http.MethodGet, "/api/banks/abc", ""},
		{http.MethodGet, "/api/banks/-1", ""},
		{http.MethodPut, "/api/banks/999", `{"name":"Ghost","location":"Nowhere"}`},
		{http.MethodPatch, "/api/banks/999", `{"name":"Ghost"}`},
		{http.MethodDelete, "/api/banks/999", ""},
		{http.MethodGet, "/api/banks/999/audit", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, tt.method, tt.target, "application/json", tt.body)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
			}
			if body := decodeError(t, rec); body.Code != "not_found" {
				t.Errorf("unexpected error body %+v", body)
			}
			if env.banks.Len() != 0 {
				t.Error("request for a missing id created a row")
			}
		})
	}
}

func TestAPIUpdate(t *testing.T) {
	env := newTestEnv(t)
	created := env.createJSON(t, "Alpha", "Springfield")

	rec := env.do(t, http.MethodPut, "/api/banks/1", "application/json", `{"name":"Alpha Prime","location":"Capital City"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.Bank
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID != created.ID || got.Name != "Alpha Prime" || got.Location != "Capital City" {
		t.Errorf("unexpected body %+v", got)
	}

	rec = env.do(t, http.MethodPut, "/api/banks/1", "application/json", `{"name":"Alpha"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing location on full update, got %d", rec.Code)
	}
}

func TestAPIPatch(t *testing.T) {
	env := newTestEnv(t)
	env.createJSON(t, "Alpha", "Springfield")

	rec := env.do(t, http.MethodPatch, "/api/banks/1", "application/json", `{"location":"Ogdenville"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Bank
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "Alpha" || got.Location != "Ogdenville" {
		t.Errorf("unexpected body %+v", got)
	}

	for _, body := range []string{`{}`, `{"name":""}`} {
		rec = env.do(t, http.MethodPatch, "/api/banks/1", "application/json", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("patch %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAPIDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createJSON(t, "Alpha", "Springfield")

	rec := env.do(t, http.MethodDelete, "/api/banks/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Bank deleted" {
		t.Errorf("unexpected body %v", body)
	}

	if rec := env.do(t, http.MethodGet, "/api/banks/1", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAPIStorageFailureHidesDetails(t *testing.T) {
	env := newTestEnv(t)
	env.banks.Err = errs.NewConnectionError("select banks", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	rec := env.do(t, http.MethodGet, "/api/banks", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "internal error" {
		t.Errorf("expected generic message, got %q", body.Error)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal details leaked into the response")
	}
}

func TestAPIAudit(t *testing.T) {
	env := newTestEnv(t)
	created := env.createJSON(t, "Alpha", "Springfield")
	_ = env.audit.Log(context.Background(), created.ID, domain.ActionCreated, created)
	_ = env.audit.Log(context.Background(), created.ID, domain.ActionUpdated, created)

	rec := env.do(t, http.MethodGet, "/api/banks/1/audit?limit=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []domain.AuditEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.ActionUpdated {
		t.Errorf("expected newest entry only, got %+v", entries)
	}

	if rec := env.do(t, http.MethodGet, "/api/banks/1/audit?limit=x", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	env.banks.Err = errors.New("down")
	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRootRedirect(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/banks" {
		t.Errorf("expected 303 to /banks, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func formBody(name, location string) string {
	return url.Values{"name": {name}, "location": {location}}.Encode()
}

const formType = "application/x-www-form-urlencoded"

func TestUICreateFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/banks", formType, formBody("Alpha Bank", "Springfield"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/banks" {
		t.Fatalf("expected 303 to /banks, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != flashCookie {
		t.Fatalf("expected flash cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/banks", nil)
	req.AddCookie(cookies[0])
	page := httptest.NewRecorder()
	env.handler.ServeHTTP(page, req)

	if page.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", page.Code)
	}
	html := page.Body.String()
	for _, want := range []string{"Bank created successfully!", "Alpha Bank", "Springfield"} {
		if !strings.Contains(html, want) {
			t.Errorf("list page missing %q", want)
		}
	}
	if !strings.HasPrefix(page.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected HTML, got %q", page.Header().Get("Content-Type"))
	}
}

func TestUICreateValidationRerendersForm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/banks", formType, formBody("Alpha Bank", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	html := rec.Body.String()
	if !strings.Contains(html, `<div class="flash flash-error">location: field is required</div>`) {
		t.Error("form should show the validation message as an error flash")
	}
	if !strings.Contains(html, `value="Alpha Bank"`) {
		t.Error("form should keep the submitted name")
	}
	if env.banks.Inserts != 0 {
		t.Error("invalid form reached storage")
	}
}

func TestUIPages(t *testing.T) {
	env := newTestEnv(t)
	env.createJSON(t, "Alpha", "Springfield")

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/banks", http.StatusOK, "Alpha"},
		{"/banks/new", http.StatusOK, `action="/banks"`},
		{"/banks/1", http.StatusOK, "Springfield"},
		{"/banks/1/edit", http.StatusOK, `value="Alpha"`},
		{"/banks/999", http.StatusNotFound, "Bank not found"},
		{"/banks/abc", http.StatusNotFound, "Bank not found"},
		{"/nowhere", http.StatusNotFound, "Page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, "", "")
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestUIUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createJSON(t, "Alpha", "Springfield")

	rec := env.do(t, http.MethodPost, "/banks/1/update", formType, formBody("Alpha Prime", "Capital City"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/banks/1" {
		t.Fatalf("expected 303 to /banks/1, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(t, http.MethodPost, "/banks/1/update", formType, formBody("", "Capital City"))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `action="/banks/1/update"`) {
		t.Errorf("expected edit form re-render with 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/banks/999/update", formType, formBody("Ghost", "Nowhere"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing bank, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/banks/1/delete", formType, "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/banks" {
		t.Fatalf("expected 303 to /banks, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if env.banks.Len() != 0 {
		t.Error("bank was not deleted")
	}
}

func TestNegotiationOnUIRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.createJSON(t, "Alpha", "Springfield")

	tests := []struct {
		name   string
		accept string
		json   bool
	}{
		{"browser", "text/html,application/xhtml+xml,*/*;q=0.8", false},
		{"json client", "application/json", true},
		{"json preferred by q", "text/html;q=0.5, application/json", true},
		{"no accept", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/banks", "", "", "Accept", tt.accept)
			isJSON := strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json")
			if isJSON != tt.json {
				t.Errorf("expected json=%v, got Content-Type %q", tt.json, rec.Header().Get("Content-Type"))
			}
		})
	}

	rec := env.do(t, http.MethodPost, "/banks", "application/json", `{"name":"Beta","location":"Shelbyville"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("JSON body on UI route should create with 201, got %d", rec.Code)
	}
}

func TestAccessLogCarriesTraceID(t *testing.T) {
	shutdown, err := utils.InitTracer(context.Background(), "bank-registry-test", "test", "")
	if err != nil {
		t.Fatalf("InitTracer returned error: %v", err)
	}
	defer shutdown()

	var logs bytes.Buffer
	prev := utils.Logger
	utils.Logger = utils.NewLogger(&logs, "dev")
	defer func() { utils.Logger = prev }()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/banks", "", "")

	traceID := rec.Header().Get("X-Trace-ID")
	if len(traceID) != 32 {
		t.Fatalf("expected a trace id header, got %q", traceID)
	}
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "msg=http_request") {
			if !strings.Contains(line, "trace_id="+traceID) {
				t.Errorf("access log missing trace id %s: %s", traceID, line)
			}
			return
		}
	}
	t.Errorf("no access log line written:\n%s", logs.String())
}

// panickingBanks panics on Delete.
type panickingBanks struct {
	service.BankService
}

func (panickingBanks) Delete(context.Context, int64) error {
	panic("delete exploded")
}

func TestPanicIsRecordedAsServerError(t *testing.T) {
	handler := NewRouter(Deps{Banks: panickingBanks{}}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/banks/1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "internal error" {
		t.Errorf("unexpected error body %+v", body)
	}

	scrape := httptest.NewRecorder()
	handler.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `bank_registry_http_requests_total{method="DELETE",route="/api/banks/{id}",status_code="500"}`
	if !strings.Contains(scrape.Body.String(), want) {
		t.Errorf("metrics missing %s", want)
	}
}
