package pipeline

import (
	"testing"
	"time"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	data := []byte("hello world")
	a := NewJob("a.txt", data)
	b := NewJob("b.txt", data)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty job IDs, got %q and %q", a.ID, b.ID)
	}
	if a.DocID != "b94d27b9934d3e08" {
		t.Errorf("expected doc ID from content hash, got %q", a.DocID)
	}
	if a.DocID != b.DocID {
		t.Errorf("expected equal content to share the doc ID, got %q and %q", a.DocID, b.DocID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if string(a.FileData()) != "hello world" {
		t.Errorf("expected file data to be kept, got %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusClassifying, "classifying"},
		{StatusReporting, "reporting"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusClassifying, StatusReporting} {
		if s.Done() {
			t.Errorf("expected %q not to be final", s)
		}
	}
	for _, s := range []JobStatus{StatusCompleted, StatusFailed} {
		if !s.Done() {
			t.Errorf("expected %q to be final", s)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parsing: bad header")
	job.AddError("reporting: disk full")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parsing: bad header" {
		t.Errorf("expected first error %q, got %q", "parsing: bad header", snap.Progress.Errors[0])
	}
}

func TestJob_ParsedAndResult(t *testing.T) {
	job := NewJob("memo.txt", []byte("x"))
	if doc, res := job.Result(); doc != nil || res != nil {
		t.Fatal("expected no result before classification")
	}

	doc := &model.Document{Pages: []*model.Page{
		{PageNo: 1, Lines: []*model.Line{{Text: "a"}, {Text: "b"}}},
		{PageNo: 2, Lines: []*model.Line{{Text: "c"}}},
	}}
	job.SetParsed(doc)
	if job.FileData() != nil {
		t.Error("expected raw upload to be released after parsing")
	}

	job.SetResult(&classify.Result{
		TOC:         []classify.TOCEntry{{Level: 1, Text: "a", PageNo: 1}},
		NumberLists: []classify.ListResult{{}, {}},
	})
	job.AddReportFiles("/out/memo_classified.json")

	snap := job.Snapshot()
	if snap.Progress.Pages != 2 || snap.Progress.Lines != 3 {
		t.Errorf("expected 2 pages and 3 lines, got %d and %d", snap.Progress.Pages, snap.Progress.Lines)
	}
	if snap.Progress.Headings != 1 || snap.Progress.NumberLists != 2 || snap.Progress.BulletLists != 0 {
		t.Errorf("unexpected list counts: %+v", snap.Progress)
	}
	if len(snap.Progress.ReportFiles) != 1 {
		t.Errorf("expected 1 report file, got %d", len(snap.Progress.ReportFiles))
	}

	gotDoc, gotRes := job.Result()
	if gotDoc != doc || gotRes == nil {
		t.Error("expected Result to return the parsed document and classifier output")
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil || snap.Progress.ReportFiles == nil {
		t.Error("expected non-nil slices in snapshot")
	}
}

func TestJob_SnapshotIsCopy(t *testing.T) {
	job := &Job{ID: "copy-test", UpdatedAt: time.Now()}
	job.AddError("first")
	snap := job.Snapshot()
	snap.Progress.Errors[0] = "changed"

	if job.Snapshot().Progress.Errors[0] != "first" {
		t.Error("expected snapshot mutation not to leak into the job")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
