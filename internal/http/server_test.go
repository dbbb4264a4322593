package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
	"github.com/CHURO-MAU/okurimono-note/internal/store"
	"github.com/CHURO-MAU/okurimono-note/internal/store/memory"
)

func newTestServer(records ...core.GiftRecord) *Server {
	blob := memory.Seed(records)
	return NewServer(":0", store.NewRecordStore(blob), store.NewCategoryStore(blob))
}

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func seedRecord(id, date string, amount int64, recipient string) core.GiftRecord {
	return core.GiftRecord{
		ID: id, Date: date, Amount: amount, Category: "お年玉",
		Giver: "祖父", Recipient: recipient,
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
	}
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(seedRecord("r1", "2024-01-02", 10000, "太郎"))

	rr := doJSON(t, srv, http.MethodGet, "/", "")
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "おくりものノート") {
		t.Fatalf("index body missing heading")
	}
	if !strings.Contains(rr.Body.String(), "¥10,000") {
		t.Fatalf("index body missing total: %s", rr.Body.String())
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := doJSON(t, srv, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}
}

func TestRecordLifecycle(t *testing.T) {
	srv := newTestServer()

	// Create.
	rr := doJSON(t, srv, http.MethodPost, "/api/records",
		`{"date":"2024-01-02","amount":10000,"category":"お年玉","giver":"祖父","recipient":"太郎"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created core.GiftRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("created=%+v", created)
	}

	// List.
	rr = doJSON(t, srv, http.MethodGet, "/api/records", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []core.GiftRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed=%d", len(listed))
	}

	// Update.
	rr = doJSON(t, srv, http.MethodPost, "/api/records/update",
		`{"id":"`+created.ID+`","amount":5000,"hasReturned":true}`)
	if rr.Code != 200 {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	var updated core.GiftRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Amount != 5000 || !updated.HasReturned || updated.ID != created.ID {
		t.Fatalf("updated=%+v", updated)
	}

	// Unknown id.
	rr = doJSON(t, srv, http.MethodPost, "/api/records/update", `{"id":"nope","amount":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown update status=%d", rr.Code)
	}

	// Delete twice.
	rr = doJSON(t, srv, http.MethodPost, "/api/records/delete", `{"id":"`+created.ID+`"}`)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"deleted":true`) {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/records/delete", `{"id":"`+created.ID+`"}`)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"deleted":false`) {
		t.Fatalf("second delete status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateRecordValidation(t *testing.T) {
	srv := newTestServer()

	if rr := doJSON(t, srv, http.MethodPut, "/api/records", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr := doJSON(t, srv, http.MethodPost, "/api/records", "{not json"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	cases := []string{
		`{"date":"2024/01/02","amount":1,"category":"c","giver":"g","recipient":"r"}`,
		`{"date":"2024-01-02","amount":-1,"category":"c","giver":"g","recipient":"r"}`,
		`{"date":"2024-01-02","amount":1,"category":"","giver":"g","recipient":"r"}`,
		`{"date":"2024-01-02","amount":1,"category":"c","giver":"","recipient":"r"}`,
		`{"date":"2024-01-02","amount":1,"category":"c","giver":"g","recipient":""}`,
	}
	for i, body := range cases {
		if rr := doJSON(t, srv, http.MethodPost, "/api/records", body); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d: expected 422, got %d (%s)", i, rr.Code, rr.Body.String())
		}
	}

	// Zero amount is a valid record.
	rr := doJSON(t, srv, http.MethodPost, "/api/records",
		`{"date":"2024-01-02","amount":0,"category":"c","giver":"g","recipient":"r"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("zero amount status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListFilterAndSort(t *testing.T) {
	srv := newTestServer(
		seedRecord("r1", "2024-05-31", 500, "太郎"),
		seedRecord("r2", "2024-06-15", 2000, "花子"),
		seedRecord("r3", "2024-07-01", 1000, "太郎"),
	)

	var listed []core.GiftRecord
	rr := doJSON(t, srv, http.MethodGet, "/api/records?recipient=太郎", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("filtered=%d", len(listed))
	}
	// Default order is newest first.
	if listed[0].ID != "r3" {
		t.Fatalf("order=%s", listed[0].ID)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/records?sort=amount&order=asc", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed[0].Amount != 500 || listed[2].Amount != 2000 {
		t.Fatalf("amount sort wrong: %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/records?startDate=2024-06-01&endDate=2024-06-15", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "r2" {
		t.Fatalf("date range wrong: %+v", listed)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	var cats []core.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 6 {
		t.Fatalf("expected default set, got %d", len(cats))
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"快気祝い","color":"#ABCDEF"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}
	var cat core.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.ID == "" || cat.Name != "快気祝い" {
		t.Fatalf("cat=%+v", cat)
	}

	if rr := doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"  "}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories/delete", `{"id":"`+cat.ID+`"}`)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"deleted":true`) {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(
		seedRecord("r1", "2024-01-01", 1500, "A"),
		seedRecord("r2", "2024-01-15", 2000, "B"),
	)

	rr := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var sum core.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Total != 3500 || sum.ByRecipient["A"] != 1500 || sum.ByRecipient["B"] != 2000 {
		t.Fatalf("sum=%+v", sum)
	}

	// The filter narrows the aggregation input.
	rr = doJSON(t, srv, http.MethodGet, "/api/summary?recipient=A", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Total != 1500 {
		t.Fatalf("filtered total=%d", sum.Total)
	}
}

func TestSummaryChart(t *testing.T) {
	srv := newTestServer(seedRecord("r1", "2024-01-01", 1500, "A"))

	rr := doJSON(t, srv, http.MethodGet, "/api/summary/chart?group=category", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type=%q", ct)
	}

	if rr := doJSON(t, srv, http.MethodGet, "/api/summary/chart?group=bogus", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown group status=%d", rr.Code)
	}

	empty := newTestServer()
	if rr := doJSON(t, empty, http.MethodGet, "/api/summary/chart", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("empty chart status=%d", rr.Code)
	}
}

func TestExportAndImport(t *testing.T) {
	srv := newTestServer(seedRecord("r1", "2024-01-01", 1500, "A"))

	rr := doJSON(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != 200 {
		t.Fatalf("export status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "okurimono-note_") {
		t.Fatalf("content-disposition=%q", cd)
	}
	exported := rr.Body.String()
	if !strings.Contains(exported, `"version": "1.0"`) {
		t.Fatalf("export body:\n%s", exported)
	}

	// Round trip: overwrite an empty server with the export.
	dst := newTestServer()
	rr = doJSON(t, dst, http.MethodPost, "/api/import?mode=overwrite", exported)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"added":1`) {
		t.Fatalf("overwrite status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Append skips the duplicate id.
	rr = doJSON(t, dst, http.MethodPost, "/api/import?mode=append", exported)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"added":0`) {
		t.Fatalf("append status=%d body=%s", rr.Code, rr.Body.String())
	}

	if rr := doJSON(t, dst, http.MethodPost, "/api/import", exported); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing mode status=%d", rr.Code)
	}
	if rr := doJSON(t, dst, http.MethodPost, "/api/import?mode=overwrite", `{"version":"1.0"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid document status=%d", rr.Code)
	}

	// The failed import left the store untouched.
	records, _ := dst.records.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("store changed by rejected import: %d", len(records))
	}
}

func TestParseFilterAndSort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/records?recipient=太郎&returned=true&sort=amount&order=asc", nil)
	f := parseFilter(req.URL.Query())
	if f.Recipient != "太郎" || f.HasReturned == nil || !*f.HasReturned {
		t.Fatalf("filter=%+v", f)
	}
	key, desc := parseSort(req.URL.Query())
	if key != core.SortByAmount || desc {
		t.Fatalf("key=%q desc=%v", key, desc)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/records?returned=maybe&sort=bogus", nil)
	f = parseFilter(req.URL.Query())
	if f.HasReturned != nil {
		t.Fatalf("tri-state must stay open for %q", "maybe")
	}
	key, desc = parseSort(req.URL.Query())
	if key != core.SortByDate || !desc {
		t.Fatalf("defaults: key=%q desc=%v", key, desc)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  太郎\x00\x07  "); got != "太郎" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newlines must survive, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d blocked too early", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Fatalf("61st request must be blocked")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatalf("other clients must be unaffected")
	}
}
