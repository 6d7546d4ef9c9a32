package grading

import (
	"testing"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

func TestGradeSingleChoiceScalesLinearly(t *testing.T) {
	quiz := singleChoiceQuiz("q", "A", "B", "A", "B")

	cases := []struct {
		name    string
		values  []string
		percent int
	}{
		{"all correct", []string{"A", "B", "A", "B"}, 100},
		{"none correct", []string{"B", "A", "B", "A"}, 0},
		{"half correct", []string{"A", "B", "B", "A"}, 50},
		{"three of four", []string{"A", "B", "B", "B"}, 75},
	}
	for _, tc := range cases {
		answers := make([]domain.Answer, len(tc.values))
		for i, v := range tc.values {
			answers[i] = domain.Answer{QuestionID: quiz.Questions[i].ID, Values: []string{v}}
		}
		result := Grade(quiz, answers)
		if result.Percent != tc.percent {
			t.Fatalf("%s: expected %d%%, got %d%%", tc.name, tc.percent, result.Percent)
		}
	}
}

func TestGradeUnansweredCountsAsIncorrect(t *testing.T) {
	quiz := singleChoiceQuiz("q", "A", "A")

	result := Grade(quiz, []domain.Answer{
		{QuestionID: "q1", Values: []string{"A"}},
	})
	if result.Percent != 50 {
		t.Fatalf("expected 50%%, got %d%%", result.Percent)
	}
	if result.Verdicts[1].Verdict != domain.VerdictUnanswered {
		t.Fatalf("expected unanswered verdict, got %s", result.Verdicts[1].Verdict)
	}
}

func TestGradeMultiChoiceExactSet(t *testing.T) {
	quiz := domain.QuizDefinition{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", Kind: domain.KindMultiChoice, AnswerKey: []string{"a", "c"}},
		},
	}

	cases := []struct {
		name    string
		values  []string
		verdict domain.Verdict
	}{
		{"exact match", []string{"c", "a"}, domain.VerdictCorrect},
		{"extra token", []string{"a", "b", "c"}, domain.VerdictIncorrect},
		{"missing token", []string{"a"}, domain.VerdictIncorrect},
		{"unanswered", nil, domain.VerdictUnanswered},
	}
	for _, tc := range cases {
		result := Grade(quiz, []domain.Answer{{QuestionID: "q1", Values: tc.values}})
		if result.Verdicts[0].Verdict != tc.verdict {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.verdict, result.Verdicts[0].Verdict)
		}
	}
}

func TestGradeFreeTextFoldsCaseAndWhitespace(t *testing.T) {
	quiz := domain.QuizDefinition{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", Kind: domain.KindFreeText, AnswerKey: []string{"Bauhaus"}},
		},
	}

	result := Grade(quiz, []domain.Answer{{QuestionID: "q1", Values: []string{"  bauhaus "}}})
	if result.Percent != 100 {
		t.Fatalf("expected trimmed case-folded match, got %d%%", result.Percent)
	}

	result = Grade(quiz, []domain.Answer{{QuestionID: "q1", Values: []string{"   "}}})
	if result.Verdicts[0].Verdict != domain.VerdictUnanswered {
		t.Fatalf("expected blank text to count as unanswered, got %s", result.Verdicts[0].Verdict)
	}
}

func TestGradeEmptyQuizIsZero(t *testing.T) {
	result := Grade(domain.QuizDefinition{ID: "quiz-1"}, nil)
	if result.Percent != 0 || result.Total != 0 {
		t.Fatalf("expected zero grade for empty quiz, got %+v", result)
	}
}

func TestGradeRoundsHalfUp(t *testing.T) {
	// 1 of 3 correct = 33.33 -> 33; 2 of 3 = 66.67 -> 67.
	quiz := singleChoiceQuiz("q", "A", "A", "A")

	result := Grade(quiz, []domain.Answer{{QuestionID: "q1", Values: []string{"A"}}})
	if result.Percent != 33 {
		t.Fatalf("expected 33%%, got %d%%", result.Percent)
	}
	result = Grade(quiz, []domain.Answer{
		{QuestionID: "q1", Values: []string{"A"}},
		{QuestionID: "q2", Values: []string{"A"}},
	})
	if result.Percent != 67 {
		t.Fatalf("expected 67%%, got %d%%", result.Percent)
	}
}

func singleChoiceQuiz(prefix string, keys ...string) domain.QuizDefinition {
	quiz := domain.QuizDefinition{ID: "quiz-1"}
	for i, key := range keys {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:        prefix + string(rune('1'+i)),
			Kind:      domain.KindSingleChoice,
			AnswerKey: []string{key},
		})
	}
	return quiz
}
