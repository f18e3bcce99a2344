package assignment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vivalearn/lti-tool/internal/db"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(conn, "sqlite")
}

func TestEnsureAssignmentIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.EnsureAssignment(ctx, "rl-1", "Essay 1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.ResourceLinkID != "rl-1" || a.Title != "Essay 1" || a.AllowMultiple {
		t.Fatalf("assignment: %+v", a)
	}

	// A later launch with a different platform title does not clobber the row.
	again, err := s.EnsureAssignment(ctx, "rl-1", "Renamed by platform")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again.Title != "Essay 1" {
		t.Fatalf("title clobbered: %q", again.Title)
	}
}

func TestEnsureAssignmentDefaultsTitle(t *testing.T) {
	s := newTestStore(t)
	a, err := s.EnsureAssignment(context.Background(), "rl-2", "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.Title == "" {
		t.Fatal("empty title persisted")
	}
}

func TestGetAssignmentNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetAssignment(context.Background(), "rl-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAssignment(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.EnsureAssignment(ctx, "rl-1", "Essay 1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	err := s.UpdateAssignment(ctx, Assignment{
		ResourceLinkID: "rl-1",
		Title:          "Essay 1 (revised)",
		Description:    "Now 800 words.",
		AllowMultiple:  true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	a, err := s.GetAssignment(ctx, "rl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Title != "Essay 1 (revised)" || a.Description != "Now 800 words." || !a.AllowMultiple {
		t.Fatalf("after update: %+v", a)
	}

	if err := s.UpdateAssignment(ctx, Assignment{ResourceLinkID: "rl-missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestCreateSubmissionSingleRule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.EnsureAssignment(ctx, "rl-1", "Essay 1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	first := Submission{ID: "s1", ResourceLinkID: "rl-1", UserID: "user-42", Body: "draft one"}
	if err := s.CreateSubmission(ctx, first); err != nil {
		t.Fatalf("first submission: %v", err)
	}

	second := Submission{ID: "s2", ResourceLinkID: "rl-1", UserID: "user-42", Body: "draft two"}
	if err := s.CreateSubmission(ctx, second); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submission: %v, want ErrAlreadySubmitted", err)
	}

	// A different student is unaffected.
	other := Submission{ID: "s3", ResourceLinkID: "rl-1", UserID: "user-99", Body: "theirs"}
	if err := s.CreateSubmission(ctx, other); err != nil {
		t.Fatalf("other student: %v", err)
	}

	// Allowing multiple lifts the rule.
	if err := s.UpdateAssignment(ctx, Assignment{ResourceLinkID: "rl-1", Title: "Essay 1", AllowMultiple: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.CreateSubmission(ctx, second); err != nil {
		t.Fatalf("resubmission after allow_multiple: %v", err)
	}
}

func TestCreateSubmissionUnknownAssignment(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateSubmission(context.Background(), Submission{ID: "s1", ResourceLinkID: "rl-missing", UserID: "u", Body: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSubmissionsScoping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.EnsureAssignment(ctx, "rl-1", "Essay 1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	subs := []Submission{
		{ID: "s1", ResourceLinkID: "rl-1", UserID: "user-42", Body: "mine", CreatedAt: 100},
		{ID: "s2", ResourceLinkID: "rl-1", UserID: "user-99", Body: "theirs", CreatedAt: 200},
	}
	for _, sub := range subs {
		if err := s.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("create %s: %v", sub.ID, err)
		}
	}

	own, err := s.ListSubmissions(ctx, "rl-1", "user-42")
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 || own[0].ID != "s1" || own[0].Grade != nil {
		t.Fatalf("own submissions: %+v", own)
	}

	all, err := s.ListAllSubmissions(ctx, "rl-1")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[0].ID != "s1" || all[1].ID != "s2" {
		t.Fatalf("all submissions: %+v", all)
	}
}

func TestGradeSubmission(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.EnsureAssignment(ctx, "rl-1", "Essay 1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.CreateSubmission(ctx, Submission{ID: "s1", ResourceLinkID: "rl-1", UserID: "user-42", Body: "mine"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.GradeSubmission(ctx, "s1", 87.5, "solid work"); err != nil {
		t.Fatalf("grade: %v", err)
	}
	subs, err := s.ListSubmissions(ctx, "rl-1", "user-42")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 || subs[0].Grade == nil || *subs[0].Grade != 87.5 || subs[0].Comment != "solid work" {
		t.Fatalf("graded submission: %+v", subs[0])
	}

	if err := s.GradeSubmission(ctx, "s-missing", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("grade missing: %v", err)
	}
}
