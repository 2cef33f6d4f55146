package catalog

import (
	"errors"
)

// Ошибки каталога
var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrInvalidQuiz  = errors.New("invalid quiz")
)

// Quiz представляет квиз из каталога. После загрузки не изменяется.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Category    Category   `json:"category" validate:"required,category"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`
	Difficulty  Difficulty `json:"difficulty" validate:"required,difficulty"`
}

// Question представляет вопрос квиза.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correct"`
	Explanation   string   `json:"explanation"`
}

// IsCorrect сообщает, совпадает ли индекс ответа с правильным.
func (q *Question) IsCorrect(optionIdx int) bool {
	return q.CorrectAnswer == optionIdx
}

// Category определяет категорию квиза.
type Category string

const (
	CategoryGeneralKnowledge Category = "general-knowledge"
	CategoryEntertainment    Category = "entertainment"
	CategoryLogicPuzzles     Category = "logic-puzzles"
	CategoryScienceNature    Category = "science-nature"
	CategoryHistory          Category = "history"
	CategorySports           Category = "sports"
)

// Categories содержит все категории в порядке отображения.
var Categories = []Category{
	CategoryGeneralKnowledge,
	CategoryEntertainment,
	CategoryLogicPuzzles,
	CategoryScienceNature,
	CategoryHistory,
	CategorySports,
}

var categoryNames = map[Category]string{
	CategoryGeneralKnowledge: "General Knowledge",
	CategoryEntertainment:    "Entertainment",
	CategoryLogicPuzzles:     "Logic Puzzles",
	CategoryScienceNature:    "Science & Nature",
	CategoryHistory:          "History",
	CategorySports:           "Sports",
}

// Valid проверяет, что категория известна.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName возвращает название категории для вывода пользователю.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}

	return string(c)
}

// Difficulty определяет сложность квиза.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid проверяет, что сложность известна.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}

	return false
}
