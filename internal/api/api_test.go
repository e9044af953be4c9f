package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/bcnelson/addrscope/internal/api"
	"github.com/bcnelson/addrscope/internal/auth"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/storage/memory"
)

// testServer creates a test server with in-memory storage
type testServer struct {
	handler      http.Handler
	store        *memory.Store
	bootstrapKey string
}

func newTestServer() *testServer {
	return newTestServerWithVerifier(nil)
}

func newTestServerWithVerifier(verifier *fakeVerifier) *testServer {
	store := memory.New()
	bootstrapKey := "test-bootstrap-key"

	svc := service.NewInspectorService(store, service.Options{Workers: 4, Locale: language.English})

	var handler http.Handler
	if verifier != nil {
		handler = api.NewRouter(store, svc, bootstrapKey, verifier)
	} else {
		handler = api.NewRouter(store, svc, bootstrapKey, nil)
	}

	return &testServer{
		handler:      handler,
		store:        store,
		bootstrapKey: bootstrapKey,
	}
}

// fakeVerifier accepts exactly one token.
type fakeVerifier struct {
	token string
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (*auth.Claims, error) {
	if raw != f.token {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{Subject: "u1", Email: "u1@example.com"}, nil
}

func (ts *testServer) request(method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	return ts.requestWithHeaders(method, path, body, apiKey, nil)
}

func (ts *testServer) requestWithHeaders(method, path string, body any, apiKey string, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/health", nil, "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	decode(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer()

	// Request without auth header
	rr := ts.request("GET", "/api/v1/reports", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	var resp domain.StandardErrorResponse
	decode(t, rr, &resp)
	if resp.Error.Code != domain.ErrCodeUnauthorized {
		t.Errorf("Expected code %s, got %s", domain.ErrCodeUnauthorized, resp.Error.Code)
	}

	// Request with invalid auth header format
	req := httptest.NewRequest("GET", "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Basic invalid")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Request with invalid API key
	rr = ts.request("GET", "/api/v1/reports", nil, "invalid-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestBootstrapKeyAuth(t *testing.T) {
	ts := newTestServer()

	// Bootstrap key should work when no API keys exist
	rr := ts.request("GET", "/api/v1/reports", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bootstrap key, got %d", rr.Code)
	}
}

func TestOIDCBearerAuth(t *testing.T) {
	ts := newTestServerWithVerifier(&fakeVerifier{token: "h.p.s"})

	rr := ts.request("GET", "/api/v1/reports", nil, "h.p.s")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with valid ID token, got %d", rr.Code)
	}

	rr = ts.request("GET", "/api/v1/reports", nil, "h.p.bad")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with bad ID token, got %d", rr.Code)
	}

	// API keys still work alongside OIDC
	rr = ts.request("GET", "/api/v1/reports", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bootstrap key, got %d", rr.Code)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	ts := newTestServer()

	// Create API key using bootstrap key
	createReq := domain.CreateAPIKeyRequest{Name: "Test Key"}
	rr := ts.request("POST", "/api/v1/keys", createReq, ts.bootstrapKey)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var createResp domain.CreateAPIKeyResponse
	decode(t, rr, &createResp)
	if !strings.HasPrefix(createResp.Key, "as_") {
		t.Errorf("Expected key with as_ prefix, got %q", createResp.Key)
	}
	if createResp.Name != "Test Key" {
		t.Errorf("Expected name 'Test Key', got '%s'", createResp.Name)
	}

	// Use the new API key
	rr = ts.request("GET", "/api/v1/keys", nil, createResp.Key)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with new API key, got %d", rr.Code)
	}

	var keys []*domain.APIKey
	decode(t, rr, &keys)
	if len(keys) != 1 {
		t.Errorf("Expected 1 key, got %d", len(keys))
	}

	// Bootstrap key stops working once a key exists
	rr = ts.request("GET", "/api/v1/keys", nil, ts.bootstrapKey)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for bootstrap key, got %d", rr.Code)
	}

	// Missing name
	rr = ts.request("POST", "/api/v1/keys", domain.CreateAPIKeyRequest{}, createResp.Key)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", rr.Code)
	}

	// Delete API key
	rr = ts.request("DELETE", "/api/v1/keys/"+createResp.ID, nil, createResp.Key)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
}

func TestSplitEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/split", domain.SplitRequest{Input: "10.0.0.1\n10.0.0.1\n\n192.168.1.0/24"}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp domain.BulkParseResult
	decode(t, rr, &resp)
	if len(resp.Entries) != 2 || resp.Entries[0] != "10.0.0.1" || resp.Entries[1] != "192.168.1.0/24" {
		t.Errorf("Unexpected entries: %v", resp.Entries)
	}

	rr = ts.request("POST", "/api/v1/split", domain.SplitRequest{Input: "1.1.1.1", SoftLimit: -1}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for negative limit, got %d", rr.Code)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	ts := newTestServer()

	req := domain.ClassifyRequest{Entries: []string{"10.0.0.1", "::1", "10.0.0.0/8", "10.0.0.1-10.0.0.9", "example.com", "???"}}
	rr := ts.request("POST", "/api/v1/classify", req, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp []domain.ClassifiedEntry
	decode(t, rr, &resp)
	want := []domain.EntryType{
		domain.EntryIPv4, domain.EntryIPv6, domain.EntryCIDR, domain.EntryRange, domain.EntryHostname, domain.EntryInvalid,
	}
	if len(resp) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(resp))
	}
	for i := range want {
		if resp[i].Type != want[i] {
			t.Errorf("Entry %q: expected %s, got %s", resp[i].Entry, want[i], resp[i].Type)
		}
	}
}

func TestCompatibilityEndpoint(t *testing.T) {
	ts := newTestServer()

	tests := []struct {
		query      string
		wantStatus int
		comparable bool
		reason     domain.ComparabilityReason
	}{
		{"a=IPv4&b=IPv4", http.StatusOK, true, domain.ReasonSameType},
		{"a=Hostname&b=IPv6", http.StatusOK, true, domain.ReasonHostnameWithIP},
		{"a=CIDR&b=Range", http.StatusOK, false, domain.ReasonIncompatibleFamilies},
		{"a=IPv4&b=Bogus", http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := ts.request("GET", "/api/v1/compatibility?"+tt.query, nil, ts.bootstrapKey)
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp domain.Comparability
			decode(t, rr, &resp)
			if resp.Comparable != tt.comparable || resp.Reason != tt.reason {
				t.Errorf("Expected %v/%s, got %v/%s", tt.comparable, tt.reason, resp.Comparable, resp.Reason)
			}
		})
	}
}

func TestCompareEndpoint(t *testing.T) {
	ts := newTestServer()

	// Raw entries
	rr := ts.request("POST", "/api/v1/compare", domain.CompareRequest{A: "192.168.1.10", B: "192.168.1.11"}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]any
	decode(t, rr, &resp)
	if resp["status"] != "comparable" {
		t.Errorf("Expected status comparable, got %v", resp["status"])
	}
	if resp["type"] != "ipv4" {
		t.Errorf("Expected type ipv4, got %v", resp["type"])
	}
	sims, _ := resp["similarities"].([]any)
	found := false
	for _, s := range sims {
		if s == "same_/24_subnet" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected same_/24_subnet in similarities, got %v", sims)
	}

	// Pre-computed results
	isTrue := true
	req := domain.CompareRequest{
		ResultA: &domain.AnalysisResult{Input: "example.com", Hostname: "example.com", IsValid: &isTrue},
		ResultB: &domain.AnalysisResult{Input: "8.8.8.8", IsValid: &isTrue},
		TypeA:   domain.EntryHostname,
		TypeB:   domain.EntryIPv4,
	}
	rr = ts.request("POST", "/api/v1/compare", req, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp = nil
	decode(t, rr, &resp)
	if resp["type"] != "hostname" {
		t.Errorf("Expected type hostname, got %v", resp["type"])
	}

	// Incomparable pair still answers 200 with status error
	rr = ts.request("POST", "/api/v1/compare", domain.CompareRequest{A: "10.0.0.0/8", B: "::1"}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	resp = nil
	decode(t, rr, &resp)
	if resp["status"] != "error" {
		t.Errorf("Expected status error, got %v", resp["status"])
	}
	if _, ok := resp["differences"]; ok {
		t.Error("Expected no differences for incomparable pair")
	}

	// Missing entries
	rr = ts.request("POST", "/api/v1/compare", domain.CompareRequest{A: "1.1.1.1"}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	// Bad type
	rr = ts.request("POST", "/api/v1/compare", domain.CompareRequest{
		ResultA: &domain.AnalysisResult{}, ResultB: &domain.AnalysisResult{}, TypeA: "Bogus",
	}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad type, got %d", rr.Code)
	}
}

func TestInspectEndpoint(t *testing.T) {
	ts := newTestServer()

	req := domain.InspectRequest{
		Input:   "192.168.1.1, 8.8.8.8, 10.0.0.1, example.com",
		Filters: &domain.Filters{PrivacyFilter: "Private"},
	}
	rr := ts.request("POST", "/api/v1/inspect", req, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		domain.Batch
		Filtered []domain.AnalysisResult `json:"filtered"`
	}
	decode(t, rr, &resp)
	if len(resp.Results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(resp.Results))
	}
	if len(resp.Filtered) != 2 {
		t.Errorf("Expected 2 private results, got %d", len(resp.Filtered))
	}
	if resp.Analysis == nil {
		t.Fatal("Expected analysis")
	}
	if len(resp.Analysis.Outliers) != 1 || resp.Analysis.Outliers[0].Input != "example.com" {
		t.Errorf("Expected example.com outlier, got %+v", resp.Analysis.Outliers)
	}

	rr = ts.request("POST", "/api/v1/inspect", domain.InspectRequest{
		Input:   "1.1.1.1",
		Filters: &domain.Filters{TypeFilter: "Nope"},
	}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad filter, got %d", rr.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := newTestServer()

	isTrue := true
	one := []domain.AnalysisResult{{Input: "1.1.1.1", IsValid: &isTrue}}
	rr := ts.request("POST", "/api/v1/analyze", domain.AnalyzeRequest{Results: one, Types: []domain.EntryType{domain.EntryIPv4}}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for a single result, got %d", rr.Code)
	}
	var errResp domain.StandardErrorResponse
	decode(t, rr, &errResp)
	if errResp.Error.Code != domain.ErrCodeBatchTooSmall {
		t.Errorf("Expected code %s, got %s", domain.ErrCodeBatchTooSmall, errResp.Error.Code)
	}

	two := []domain.AnalysisResult{
		{Input: "1.1.1.1", IsValid: &isTrue},
		{Input: "2.2.2.2", IsValid: &isTrue},
	}
	rr = ts.request("POST", "/api/v1/analyze", domain.AnalyzeRequest{Results: two}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var analysis domain.MultiItemAnalysis
	decode(t, rr, &analysis)
	if analysis.Total != 2 || analysis.TypeDistribution[domain.EntryIPv4] != 2 {
		t.Errorf("Unexpected analysis: %+v", analysis)
	}
}

func TestFilterAndSummaryEndpoints(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/inspect", domain.InspectRequest{Input: "192.168.1.1\n8.8.8.8\n::1"}, ts.bootstrapKey)
	var batch domain.Batch
	decode(t, rr, &batch)

	rr = ts.request("POST", "/api/v1/filter", domain.FilterRequest{
		Results: batch.Results,
		Filters: domain.Filters{TypeFilter: "IPv4", SearchText: "8.8"},
	}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var filtered []domain.AnalysisResult
	decode(t, rr, &filtered)
	if len(filtered) != 1 || filtered[0].Input != "8.8.8.8" {
		t.Errorf("Expected only 8.8.8.8, got %+v", filtered)
	}

	rr = ts.request("POST", "/api/v1/summary", domain.ResultsRequest{Results: batch.Results}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var summary domain.BulkSummary
	decode(t, rr, &summary)
	if summary.Total != 3 || summary.ByType[domain.EntryIPv4] != 2 || summary.ByType[domain.EntryIPv6] != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/inspect", domain.InspectRequest{Input: "192.168.1.1\n8.8.8.8"}, ts.bootstrapKey)
	var batch domain.Batch
	decode(t, rr, &batch)

	rr = ts.request("POST", "/api/v1/export?format=csv", domain.ResultsRequest{Results: batch.Results}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Expected CSV content type, got %q", ct)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "addrscope-results.csv") {
		t.Errorf("Unexpected Content-Disposition %q", rr.Header().Get("Content-Disposition"))
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "Input,Type") {
		t.Errorf("Unexpected CSV body: %q", rr.Body.String())
	}

	rr = ts.request("POST", "/api/v1/export?format=yaml", domain.ResultsRequest{Results: batch.Results}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "input: 192.168.1.1") {
		t.Errorf("Expected YAML body, got %q", rr.Body.String())
	}

	rr = ts.request("POST", "/api/v1/export?format=xml", domain.ResultsRequest{}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unsupported format, got %d", rr.Code)
	}
}

func TestReportCRUD(t *testing.T) {
	ts := newTestServer()

	createReq := domain.CreateReportRequest{Name: "office", Input: "192.168.1.1\n192.168.1.2\nexample.com"}
	rr := ts.request("POST", "/api/v1/reports", createReq, ts.bootstrapKey)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Error("Expected ETag header on create")
	}

	var report domain.Report
	decode(t, rr, &report)
	if report.Entries != 3 || report.Batch == nil {
		t.Fatalf("Unexpected report: %+v", report)
	}

	// Duplicate name
	rr = ts.request("POST", "/api/v1/reports", createReq, ts.bootstrapKey)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rr.Code)
	}

	// Invalid name
	rr = ts.request("POST", "/api/v1/reports", domain.CreateReportRequest{Input: "1.1.1.1"}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	// Get
	rr = ts.request("GET", "/api/v1/reports/"+report.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	// List omits batches
	rr = ts.request("GET", "/api/v1/reports", nil, ts.bootstrapKey)
	var reports []domain.Report
	decode(t, rr, &reports)
	if len(reports) != 1 || reports[0].Batch != nil {
		t.Errorf("Unexpected list: %+v", reports)
	}

	// Stale If-Match
	rr = ts.requestWithHeaders("PUT", "/api/v1/reports/"+report.ID, domain.UpdateReportRequest{Name: "lab"},
		ts.bootstrapKey, map[string]string{"If-Match": `"report-stale"`})
	if rr.Code != http.StatusPreconditionFailed {
		t.Errorf("Expected status 412, got %d", rr.Code)
	}

	// Rename with matching If-Match
	rr = ts.requestWithHeaders("PUT", "/api/v1/reports/"+report.ID, domain.UpdateReportRequest{Name: "lab"},
		ts.bootstrapKey, map[string]string{"If-Match": etag})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var renamed domain.Report
	decode(t, rr, &renamed)
	if renamed.Name != "lab" {
		t.Errorf("Expected name lab, got %q", renamed.Name)
	}
	if rr.Header().Get("ETag") == etag {
		t.Error("Expected ETag to change after rename")
	}

	// Export
	rr = ts.request("GET", "/api/v1/reports/"+report.ID+"/export?format=json", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var exported []domain.AnalysisResult
	decode(t, rr, &exported)
	if len(exported) != 3 {
		t.Errorf("Expected 3 exported results, got %d", len(exported))
	}

	// Delete
	rr = ts.request("DELETE", "/api/v1/reports/"+report.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}

	// Verify deleted
	rr = ts.request("GET", "/api/v1/reports/"+report.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
