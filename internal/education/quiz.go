package education

import (
	"errors"
	"fmt"
)

// ErrInvalidAnswers is returned when a quiz submission does not match the bank.
var ErrInvalidAnswers = errors.New("invalid quiz answers")

// Quiz grading tiers, as percentages of correct answers.
const (
	ExcellentPct = 80.0
	GoodPct      = 60.0
)

// Question is one multiple-choice quiz item. Correct indexes Options.
type Question struct {
	Question string   `yaml:"question" json:"question"`
	Options  []string `yaml:"options" json:"options"`
	Correct  int      `yaml:"correct" json:"-"`
}

// AnswerResult is the graded outcome of one question.
type AnswerResult struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
	Correct  int    `json:"correct"`
	Right    bool   `json:"right"`
}

// QuizResult is a graded submission.
type QuizResult struct {
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Grade      string         `json:"grade"`
	Feedback   string         `json:"feedback"`
	Answers    []AnswerResult `json:"answers"`
}

// Quiz returns the question bank in file order.
func (l *Library) Quiz() []Question {
	return append([]Question(nil), l.quiz...)
}

// GradeQuiz scores answers against the question bank. answers[i] is the
// chosen option index for question i; -1 or a missing entry counts as
// unanswered and wrong.
func (l *Library) GradeQuiz(answers []int) (QuizResult, error) {
	if len(l.quiz) == 0 {
		return QuizResult{}, fmt.Errorf("%w: no questions loaded", ErrInvalidAnswers)
	}
	if len(answers) > len(l.quiz) {
		return QuizResult{}, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidAnswers, len(answers), len(l.quiz))
	}

	res := QuizResult{Total: len(l.quiz), Answers: make([]AnswerResult, len(l.quiz))}
	for i, q := range l.quiz {
		answer := -1
		if i < len(answers) {
			answer = answers[i]
		}
		if answer < -1 || answer >= len(q.Options) {
			return QuizResult{}, fmt.Errorf("%w: question %d has no option %d", ErrInvalidAnswers, i+1, answer)
		}
		right := answer == q.Correct
		if right {
			res.Score++
		}
		res.Answers[i] = AnswerResult{Question: q.Question, Answer: answer, Correct: q.Correct, Right: right}
	}
	res.Percentage = float64(res.Score*100) / float64(res.Total)
	res.Grade, res.Feedback = gradeFor(res.Percentage)
	return res, nil
}

func gradeFor(pct float64) (grade, feedback string) {
	switch {
	case pct >= ExcellentPct:
		return "excellent", "Excellent! You have a strong understanding of trading concepts!"
	case pct >= GoodPct:
		return "good", "Good! Keep studying to improve your knowledge."
	default:
		return "keep_learning", "Keep learning! Review the material and try again."
	}
}

func validateQuiz(quiz []Question) error {
	for i, q := range quiz {
		if q.Question == "" {
			return fmt.Errorf("quiz question %d is empty", i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("quiz question %d needs at least two options", i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("quiz question %d: correct option %d out of range", i+1, q.Correct)
		}
	}
	return nil
}
