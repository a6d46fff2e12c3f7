package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"mediaflow/internal/metastore"
	"mediaflow/internal/testsupport"
)

func TestCLIProcessRecordsFailedJob(t *testing.T) {
	env := setupCLITestEnv(t)

	// The stub ffprobe produces no output, so ingestion fails and the
	// failure cascades to every dependent task.
	input := filepath.Join(env.baseDir, "clip.mkv")
	testsupport.WriteFile(t, input, 2048)

	out, _, err := runCLI(t, []string{"process", input}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "ingestion")
	requireContains(t, out, "failed tasks")

	store := testsupport.MustOpenStore(t, env.cfg)
	records, err := store.ListJobs(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(records))
	}
	rec := records[0]
	if rec.State != metastore.JobStateFailed {
		t.Fatalf("expected failed job, got %s", rec.State)
	}
	if rec.TotalTasks != 8 || rec.CompletedTasks != 0 {
		t.Fatalf("unexpected counters: %d/%d", rec.CompletedTasks, rec.TotalTasks)
	}
	if !strings.Contains(rec.FailureDetail, "ingestion") {
		t.Fatalf("expected failure detail to name ingestion, got %q", rec.FailureDetail)
	}
}

func TestCLIProcessRejectsUnknownProfile(t *testing.T) {
	env := setupCLITestEnv(t)

	input := filepath.Join(env.baseDir, "clip.mkv")
	testsupport.WriteFile(t, input, 512)

	_, _, err := runCLI(t, []string{"process", "--profile", "bogus", input}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	requireContains(t, err.Error(), "unknown graph profile")
}

func TestCLIProcessRejectsMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"process", filepath.Join(env.baseDir, "missing.mkv")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestCLIJobsListsLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	store, err := metastore.Open(env.cfg)
	if err != nil {
		t.Fatalf("metastore.Open: %v", err)
	}
	ctx := context.Background()
	if err := store.RecordJobStarted(ctx, "job-aaa", "/media/a.mkv", "realtime", 8); err != nil {
		t.Fatalf("RecordJobStarted: %v", err)
	}
	if err := store.RecordJobFinished(ctx, "job-aaa", metastore.JobStateCompleted, 8, 0, ""); err != nil {
		t.Fatalf("RecordJobFinished: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, []string{"jobs"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	requireContains(t, out, "job-aaa")
	requireContains(t, out, "completed")
	requireContains(t, out, "8/8")
}

func TestCLIJobsEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"jobs"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	requireContains(t, out, "No jobs recorded")
}

func TestCLITestNotify(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	env := setupCLITestEnv(t, testsupport.WithNtfyTopic(srv.URL))

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")

	select {
	case <-received:
	default:
		t.Fatal("expected the ntfy endpoint to receive a request")
	}
}

func TestCLITestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without ntfy topic")
	}
	requireContains(t, err.Error(), "no ntfy topic configured")
}

func TestCLIStatusReportsEnvironment(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "System dependencies")
	requireContains(t, out, "Paths and services")
	requireContains(t, out, "FFmpeg")
}

func TestCLIPreflightPassesWithStubs(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	requireContains(t, out, "All preflight checks passed")
}
