package memory

import (
	"context"
	"testing"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

func TestScoreStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	if _, ok, err := store.GetRecord(ctx, "a@example.com", "quiz-1"); err != nil || ok {
		t.Fatalf("expected absent record, got ok=%v err=%v", ok, err)
	}

	rec := domain.AttemptRecord{Best: 75, Attempts: 1}
	if err := store.PutRecord(ctx, "a@example.com", "quiz-1", rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.GetRecord(ctx, "a@example.com", "quiz-1")
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}

	// Other quizzes for the same user stay independent.
	if _, ok, _ := store.GetRecord(ctx, "a@example.com", "quiz-2"); ok {
		t.Fatalf("expected no record for quiz-2")
	}
}
