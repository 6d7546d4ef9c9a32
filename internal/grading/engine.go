package grading

import (
	"math"
	"strings"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

// Grade evaluates one quiz attempt against its answer key and returns the
// percentage plus per-question verdicts. It is pure: safe to call on every
// answer change for live feedback without touching any stored state.
func Grade(quiz domain.QuizDefinition, answers []domain.Answer) domain.GradeResult {
	submitted := make(map[string][]string, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.Values
	}

	result := domain.GradeResult{
		QuizID:   quiz.ID,
		Total:    len(quiz.Questions),
		Verdicts: make([]domain.QuestionVerdict, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		verdict := evaluate(q, submitted[q.ID])
		if verdict == domain.VerdictCorrect {
			result.Correct++
		}
		result.Verdicts = append(result.Verdicts, domain.QuestionVerdict{
			QuestionID: q.ID,
			Verdict:    verdict,
		})
	}
	if result.Total > 0 {
		result.Percent = int(math.Round(100 * float64(result.Correct) / float64(result.Total)))
	}
	return result
}

func evaluate(q domain.Question, values []string) domain.Verdict {
	switch q.Kind {
	case domain.KindSingleChoice:
		return evaluateSingleChoice(q, values)
	case domain.KindMultiChoice:
		return evaluateMultiChoice(q, values)
	case domain.KindFreeText:
		return evaluateFreeText(q, values)
	default:
		// Unknown kinds cannot be answered correctly.
		return domain.VerdictIncorrect
	}
}

// evaluateSingleChoice requires the submitted token to equal the key exactly.
func evaluateSingleChoice(q domain.Question, values []string) domain.Verdict {
	if len(values) == 0 || values[0] == "" {
		return domain.VerdictUnanswered
	}
	if len(q.AnswerKey) > 0 && values[0] == q.AnswerKey[0] {
		return domain.VerdictCorrect
	}
	return domain.VerdictIncorrect
}

// evaluateMultiChoice requires exact set equality: extra or missing tokens
// both count as wrong, never partial credit.
func evaluateMultiChoice(q domain.Question, values []string) domain.Verdict {
	if len(values) == 0 {
		return domain.VerdictUnanswered
	}
	expected := toSet(q.AnswerKey)
	got := toSet(values)
	if len(expected) != len(got) {
		return domain.VerdictIncorrect
	}
	for token := range expected {
		if _, ok := got[token]; !ok {
			return domain.VerdictIncorrect
		}
	}
	return domain.VerdictCorrect
}

// evaluateFreeText compares case-folded, whitespace-trimmed text.
func evaluateFreeText(q domain.Question, values []string) domain.Verdict {
	if len(values) == 0 {
		return domain.VerdictUnanswered
	}
	got := strings.TrimSpace(values[0])
	if got == "" {
		return domain.VerdictUnanswered
	}
	if len(q.AnswerKey) > 0 && strings.EqualFold(got, strings.TrimSpace(q.AnswerKey[0])) {
		return domain.VerdictCorrect
	}
	return domain.VerdictIncorrect
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
