package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/config"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/parser"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/pipeline"
)

const testKey = "secret"

func newTestServer(t *testing.T, start bool) *Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.APIKey = testKey
	cfg.WorkerCount = 1

	p, err := classify.NewPipeline(cfg.ClassifyOptions(), classify.Deps{})
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	orch := pipeline.NewOrchestrator(cfg, p, parser.Options{}, nil)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, nil, cfg)
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("expected ok status, got %s", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := do(s, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	if rec := do(s, authed(httptest.NewRequest(http.MethodGet, "/api/stats", nil))); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, false)

	body := `{"documentId":"d1","fileName":"d1.pdf","pages":[{"pageNo":1,"lines":[
		{"text":"1. Introduction","coordLLX":72},
		{"text":"Some body text.","coordLLX":72},
		{"text":"2. Scope","coordLLX":72},
		{"text":"More body text.","coordLLX":72}
	]}]}`
	rec := do(s, authed(httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Document model.Document  `json:"document"`
		Result   classify.Result `json:"result"`
	}
	decodeBody(t, rec, &resp)
	lines := resp.Document.Pages[0].Lines
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0].LineType != model.HeadingType(1) || lines[2].LineType != model.HeadingType(1) {
		t.Errorf("expected headings on lines 1 and 3, got %q and %q", lines[0].LineType, lines[2].LineType)
	}
	if lines[1].LineType != model.LineTypeBody {
		t.Errorf("expected body on line 2, got %q", lines[1].LineType)
	}
	if len(resp.Result.TOC) != 2 {
		t.Errorf("expected 2 TOC entries, got %d", len(resp.Result.TOC))
	}
}

func TestClassify_BadInput(t *testing.T) {
	s := newTestServer(t, false)
	for _, body := range []string{`{not json`, `{"pages":[]}`} {
		rec := do(s, authed(httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body))))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", body, rec.Code)
		}
	}
}

func TestIngest_StatusAndResult(t *testing.T) {
	s := newTestServer(t, true)

	body, ctype := multipartBody(t, "file", map[string]string{"notes.txt": "Notes\n\n• first\n• second\n"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/ingest", body))
	req.Header.Set("Content-Type", ctype)
	rec := do(s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	decodeBody(t, rec, &accepted)
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" {
		t.Fatalf("expected a job_id, got %v", accepted)
	}

	deadline := time.Now().Add(5 * time.Second)
	var snap pipeline.JobSnapshot
	for {
		rec := do(s, authed(httptest.NewRequest(http.MethodGet, "/api/ingest/"+jobID+"/status", nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from status, got %d", rec.Code)
		}
		decodeBody(t, rec, &snap)
		if snap.Status.Done() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %q after 5s", snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Lines != 3 {
		t.Errorf("expected 3 lines, got %d", snap.Progress.Lines)
	}

	rec = do(s, authed(httptest.NewRequest(http.MethodGet, "/api/ingest/"+jobID+"/result", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from result, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		JobID    string          `json:"job_id"`
		Document model.Document  `json:"document"`
		Result   classify.Result `json:"result"`
	}
	decodeBody(t, rec, &result)
	if result.JobID != jobID {
		t.Errorf("expected job_id %q, got %q", jobID, result.JobID)
	}
	if len(result.Result.BulletLists) != 1 {
		t.Errorf("expected 1 bulleted list, got %d", len(result.Result.BulletLists))
	}
}

func TestIngest_Rejections(t *testing.T) {
	s := newTestServer(t, false)

	body, ctype := multipartBody(t, "file", map[string]string{"archive.zip": "PK"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/ingest", body))
	req.Header.Set("Content-Type", ctype)
	if rec := do(s, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("plain")))
	req.Header.Set("Content-Type", "text/plain")
	if rec := do(s, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-multipart body, got %d", rec.Code)
	}
}

func TestIngest_UnknownJob(t *testing.T) {
	s := newTestServer(t, false)
	for _, path := range []string{"/api/ingest/nope/status", "/api/ingest/nope/result"} {
		if rec := do(s, authed(httptest.NewRequest(http.MethodGet, path, nil))); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for %s, got %d", path, rec.Code)
		}
	}
}

func TestIngest_ResultNotReady(t *testing.T) {
	// Not started, so the job stays queued.
	s := newTestServer(t, false)

	body, ctype := multipartBody(t, "file", map[string]string{"a.txt": "hello"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/ingest", body))
	req.Header.Set("Content-Type", ctype)
	rec := do(s, req)
	var accepted map[string]any
	decodeBody(t, rec, &accepted)

	rec = do(s, authed(httptest.NewRequest(http.MethodGet, "/api/ingest/"+accepted["job_id"].(string)+"/result", nil)))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a queued job, got %d", rec.Code)
	}
}

func TestBatchIngest(t *testing.T) {
	s := newTestServer(t, false)

	body, ctype := multipartBody(t, "files", map[string]string{
		"a.txt": "alpha",
		"b.md":  "# beta",
		"c.exe": "MZ",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/ingest/batch", body))
	req.Header.Set("Content-Type", ctype)
	rec := do(s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Jobs))
	}
	accepted, rejected := 0, 0
	for _, j := range resp.Jobs {
		if _, ok := j["job_id"]; ok {
			accepted++
		}
		if _, ok := j["error"]; ok {
			rejected++
		}
	}
	if accepted != 2 || rejected != 1 {
		t.Errorf("expected 2 accepted and 1 rejected, got %d and %d", accepted, rejected)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(s, authed(httptest.NewRequest(http.MethodGet, "/api/stats", nil)))
	var resp struct {
		Inbox   pipeline.Counters      `json:"inbox"`
		Latency pipeline.StatsSnapshot `json:"latency"`
	}
	decodeBody(t, rec, &resp)
	if resp.Inbox.Workers != 1 || resp.Inbox.QueueSize != 100 {
		t.Errorf("unexpected counters: %+v", resp.Inbox)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd.txt": "passwd.txt",
		`C:\Users\x\memo.docx`: "memo.docx",
		"":                     "unnamed",
		"a..b.md":              "a_b.md",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
