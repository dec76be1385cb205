package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/testutil"
)

func setupModerationTest(t *testing.T) (*ModerationService, *BuildService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	testutil.SeedTestUser(t, db, "owner-1", "Owner", entity.UserRoleUser)
	testutil.SeedTestUser(t, db, "admin-1", "Admin", entity.UserRoleAdmin)
	return NewModerationService(repos.Build, repos.Suggestion),
		NewBuildService(repos.Build, repos.Component, repos.Social),
		repos
}

func TestSetBuildApproval(t *testing.T) {
	moderation, builds, _ := setupModerationTest(t)
	ctx := context.Background()

	build, err := builds.Create(ctx, "owner-1", &CreateBuildRequest{Name: "Pending"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Drafts cannot be moderated.
	if err := moderation.SetBuildApproval(ctx, build.ID, true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for draft, got %v", err)
	}

	if _, err := builds.Submit(ctx, "owner-1", build.ID, &SubmitBuildRequest{Name: "Pending"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := moderation.SetBuildApproval(ctx, build.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	details, err := builds.Details(ctx, build.ID, "")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if !details.Build.IsApproved {
		t.Error("expected approved flag set")
	}

	// Rejection clears the flag again.
	if err := moderation.SetBuildApproval(ctx, build.ID, false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	details, _ = builds.Details(ctx, build.ID, "")
	if details.Build.IsApproved {
		t.Error("expected approved flag cleared")
	}

	if err := moderation.SetBuildApproval(ctx, "no-such-build", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSuggestion(t *testing.T) {
	moderation, _, _ := setupModerationTest(t)
	ctx := context.Background()

	suggestion, err := moderation.CreateSuggestion(ctx, "owner-1", &CreateSuggestionRequest{
		Link:          "https://example.com/parts/new-gpu",
		Description:   "Newly announced card",
		ComponentType: "gpu",
	})
	if err != nil {
		t.Fatalf("create suggestion: %v", err)
	}
	if suggestion.Status != entity.SuggestionStatusPending {
		t.Errorf("new suggestions start pending, got %s", suggestion.Status)
	}
	if suggestion.UserID != "owner-1" {
		t.Errorf("suggestion keeps the submitting user, got %s", suggestion.UserID)
	}

	_, err = moderation.CreateSuggestion(ctx, "owner-1", &CreateSuggestionRequest{
		Link:          "https://example.com/parts/quantum-cpu",
		ComponentType: "quantum",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}
}

func TestListSuggestionsByStatus(t *testing.T) {
	moderation, _, _ := setupModerationTest(t)
	ctx := context.Background()

	first, err := moderation.CreateSuggestion(ctx, "owner-1", &CreateSuggestionRequest{
		Link: "https://example.com/a", ComponentType: "cpu",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := moderation.CreateSuggestion(ctx, "owner-1", &CreateSuggestionRequest{
		Link: "https://example.com/b", ComponentType: "gpu",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := moderation.SetSuggestionStatus(ctx, "admin-1", first.ID, &SetSuggestionStatusRequest{
		Status: entity.SuggestionStatusApproved,
	}); err != nil {
		t.Fatalf("set status: %v", err)
	}

	pending, total, err := moderation.ListSuggestions(ctx, entity.SuggestionStatusPending, 1, 20)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Fatalf("expected 1 pending suggestion, got %d", total)
	}

	all, total, err := moderation.ListSuggestions(ctx, "", 1, 20)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", total)
	}

	if _, _, err := moderation.ListSuggestions(ctx, "bogus", 1, 20); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad status filter, got %v", err)
	}
}

func TestSetSuggestionStatusRecordsVerdict(t *testing.T) {
	moderation, _, _ := setupModerationTest(t)
	ctx := context.Background()

	suggestion, err := moderation.CreateSuggestion(ctx, "owner-1", &CreateSuggestionRequest{
		Link: "https://example.com/c", ComponentType: "storage",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := moderation.SetSuggestionStatus(ctx, "admin-1", suggestion.ID, &SetSuggestionStatusRequest{
		Status:       entity.SuggestionStatusRejected,
		AdminComment: "duplicate of an existing part",
	})
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != entity.SuggestionStatusRejected {
		t.Errorf("expected rejected, got %s", updated.Status)
	}
	if updated.AdminID == nil || *updated.AdminID != "admin-1" {
		t.Errorf("expected acting admin recorded, got %v", updated.AdminID)
	}
	if updated.AdminComment != "duplicate of an existing part" {
		t.Errorf("expected comment recorded, got %q", updated.AdminComment)
	}

	// Only terminal verdicts are accepted.
	if _, err := moderation.SetSuggestionStatus(ctx, "admin-1", suggestion.ID, &SetSuggestionStatusRequest{
		Status: entity.SuggestionStatusPending,
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for pending verdict, got %v", err)
	}

	if _, err := moderation.SetSuggestionStatus(ctx, "admin-1", "missing", &SetSuggestionStatusRequest{
		Status: entity.SuggestionStatusApproved,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
