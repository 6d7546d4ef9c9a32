package memory

import (
	"context"
	"testing"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

func TestReportLogNewestFirstAndBound(t *testing.T) {
	ctx := context.Background()
	log := NewReportLog(3)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		err := log.Append(ctx, domain.Report{
			Email:       "a@example.com",
			QuizID:      "quiz-1",
			Attempt:     i,
			Score:       i * 10,
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := log.List(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected bound of 3 entries, got %d", len(entries))
	}
	// Appending one past the bound drops exactly the oldest entry.
	if entries[0].Attempt != 4 || entries[2].Attempt != 2 {
		t.Fatalf("expected newest-first 4..2, got %+v", entries)
	}
}

func TestReportLogFilter(t *testing.T) {
	ctx := context.Background()
	log := NewReportLog(10)

	_ = log.Append(ctx, domain.Report{Email: "a@example.com", QuizID: "quiz-1"})
	_ = log.Append(ctx, domain.Report{Email: "b@example.com", QuizID: "quiz-1"})
	_ = log.Append(ctx, domain.Report{Email: "a@example.com", QuizID: "quiz-2"})

	entries, err := log.List(ctx, domain.ReportFilter{Email: "a@example.com", QuizID: "quiz-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].QuizID != "quiz-1" {
		t.Fatalf("expected single filtered entry, got %+v", entries)
	}

	all, _ := log.List(ctx, domain.ReportFilter{})
	if len(all) != 3 {
		t.Fatalf("expected all entries without filter, got %d", len(all))
	}
}
