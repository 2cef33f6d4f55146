package stats

import (
	"fmt"
	"time"

	"github.com/letsssgooo/quizquirk/internal/catalog"
)

// Result описывает итог одного завершённого прохождения квиза. Не изменяется после создания.
type Result struct {
	ID             string           `json:"id"`
	QuizID         string           `json:"quiz_id"`
	QuizTitle      string           `json:"quiz_title"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	CompletedAt    time.Time        `json:"completed_at"`
	TimeTaken      time.Duration    `json:"time_taken"`
	Category       catalog.Category `json:"category"`
}

// Percentage возвращает долю правильных ответов в процентах.
func (r *Result) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}

	return float64(r.Score*100) / float64(r.TotalQuestions)
}

// Grade возвращает оценку результата.
func (r *Result) Grade() string {
	return Grade(r.Percentage())
}

// UserStats содержит агрегированную статистику по всем результатам.
type UserStats struct {
	TotalQuizzesTaken      int               `json:"total_quizzes_taken"`
	TotalQuestionsAnswered int               `json:"total_questions_answered"`
	TotalCorrectAnswers    int               `json:"total_correct_answers"`
	AverageScore           float64           `json:"average_score"`
	FavoriteCategory       *catalog.Category `json:"favorite_category,omitempty"`
}

// Accuracy возвращает процент правильных ответов, 0 если ответов не было.
func (s *UserStats) Accuracy() float64 {
	if s.TotalQuestionsAnswered == 0 {
		return 0
	}

	return float64(s.TotalCorrectAnswers*100) / float64(s.TotalQuestionsAnswered)
}

// Оценки
const (
	GradeExcellent  = "Excellent!"
	GradeGreat      = "Great!"
	GradeGood       = "Good"
	GradeFair       = "Fair"
	GradeKeepTrying = "Keep Trying!"
)

// Grade переводит процент в оценку. Нижняя граница включительно,
// верхняя исключительно, кроме [90, 100].
func Grade(percentage float64) string {
	switch {
	case percentage >= 90 && percentage <= 100:
		return GradeExcellent
	case percentage >= 75 && percentage < 90:
		return GradeGreat
	case percentage >= 60 && percentage < 75:
		return GradeGood
	case percentage >= 40 && percentage < 60:
		return GradeFair
	default:
		return GradeKeepTrying
	}
}

// Tier определяет цветовой уровень результата для отчётов.
type Tier string

const (
	TierGreen  Tier = "green"
	TierBlue   Tier = "blue"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// TierOf возвращает цветовой уровень для процента.
func TierOf(percentage float64) Tier {
	switch {
	case percentage >= 90 && percentage <= 100:
		return TierGreen
	case percentage >= 75 && percentage < 90:
		return TierBlue
	case percentage >= 60 && percentage < 75:
		return TierYellow
	default:
		return TierRed
	}
}

// FormatDuration форматирует длительность как m:ss.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FilterByCategory оставляет результаты одной категории, сохраняя порядок.
func FilterByCategory(results []Result, category catalog.Category) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Category == category {
			out = append(out, r)
		}
	}

	return out
}
