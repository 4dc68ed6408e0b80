package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/copyforge/copyforge/internal/immersion"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "website", "billing setup", "founders", "trial signups")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero run id")
	}

	rec, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.Status != "running" || rec.Channel != "website" || rec.Topic != "billing setup" {
		t.Fatalf("unexpected run: %+v", rec)
	}

	if err := s.FinishRun(ctx, id, "complete", 85, 2, true); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	rec, err = s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.Status != "complete" || rec.Score != 85 || rec.Attempts != 2 || !rec.BestEffort {
		t.Fatalf("unexpected finished run: %+v", rec)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("unexpected run list: %+v", runs)
	}
}

func TestArtifactUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "email", "topic", "audience", "goal")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := s.SaveArtifact(ctx, id, "brief", map[string]string{"single_job": "first"}); err != nil {
		t.Fatalf("save artifact: %v", err)
	}
	if err := s.SaveArtifact(ctx, id, "brief", map[string]string{"single_job": "second"}); err != nil {
		t.Fatalf("save artifact again: %v", err)
	}

	rec, err := s.GetArtifact(ctx, id, "brief")
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if string(rec.Payload) != `{"single_job":"second"}` {
		t.Fatalf("upsert did not replace payload: %s", rec.Payload)
	}

	all, err := s.ListArtifacts(ctx, id)
	if err != nil {
		t.Fatalf("list artifacts: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(all))
	}
}

func TestEventSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "website", "topic", "audience", "goal")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := s.AddEvent(ctx, id, "phase_complete", "brief done"); err != nil {
		t.Fatalf("add event: %v", err)
	}
	if err := s.AddEvent(ctx, id, "run_complete", "score=100"); err != nil {
		t.Fatalf("add event: %v", err)
	}

	events, err := s.ListEvents(ctx, id)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, ev := range events {
		if ev.Seq != i+1 {
			t.Fatalf("event %d has seq %d", i, ev.Seq)
		}
	}
	if events[0].Kind != "run_started" || events[2].Kind != "run_complete" {
		t.Fatalf("unexpected event order: %+v", events)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	profile := &immersion.Profile{
		SourceURL:        "https://example.com",
		Terminology:      []string{"macro cycle", "deload week"},
		ForbiddenInNiche: []string{"crush your goals"},
	}
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	got, err := s.GetProfile(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.SourceURL != profile.SourceURL || len(got.Terminology) != 2 {
		t.Fatalf("unexpected profile: %+v", got)
	}

	profile.Terminology = append(profile.Terminology, "progressive overload")
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile again: %v", err)
	}
	got, err = s.GetProfile(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(got.Terminology) != 3 {
		t.Fatalf("upsert did not replace profile: %+v", got)
	}

	urls, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com" {
		t.Fatalf("unexpected profile list: %v", urls)
	}
}
