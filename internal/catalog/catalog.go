package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// namespace для детерминированных идентификаторов квизов и вопросов.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("quizquirk"))

// Catalog хранит неизменяемый список квизов.
type Catalog struct {
	quizzes []*Quiz
	byID    map[string]*Quiz
}

// New проверяет квизы и создаёт каталог.
// Квизам и вопросам без ID присваиваются стабильные идентификаторы.
func New(quizzes []Quiz) (*Catalog, error) {
	c := &Catalog{
		quizzes: make([]*Quiz, 0, len(quizzes)),
		byID:    make(map[string]*Quiz, len(quizzes)),
	}

	for i := range quizzes {
		quiz := quizzes[i]
		if err := isCorrectQuiz(&quiz); err != nil {
			return nil, fmt.Errorf("can not load quiz %d, %w", i, err)
		}

		assignIDs(&quiz)

		if _, ok := c.byID[quiz.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidQuiz, quiz.ID)
		}

		c.quizzes = append(c.quizzes, &quiz)
		c.byID[quiz.ID] = &quiz
	}

	return c, nil
}

// LoadJSON парсит JSON-массив квизов и создаёт каталог.
func LoadJSON(data []byte) (*Catalog, error) {
	var quizzes []Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, err
	}

	return New(quizzes)
}

// LoadFile читает каталог из файла. Пустой путь означает встроенный набор квизов.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return LoadJSON(data)
}

func assignIDs(quiz *Quiz) {
	if quiz.ID == "" {
		quiz.ID = uuid.NewSHA1(namespace, []byte(quiz.Title)).String()
	}

	questions := make([]Question, len(quiz.Questions))
	copy(questions, quiz.Questions)

	quizNS := uuid.NewSHA1(namespace, []byte(quiz.ID))
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewSHA1(quizNS, []byte(strconv.Itoa(i)+":"+questions[i].Text)).String()
		}
	}

	quiz.Questions = questions
}

// ListQuizzes возвращает все квизы в порядке загрузки.
func (c *Catalog) ListQuizzes() []*Quiz {
	out := make([]*Quiz, len(c.quizzes))
	copy(out, c.quizzes)

	return out
}

// GetQuiz возвращает квиз по ID.
func (c *Catalog) GetQuiz(id string) (*Quiz, error) {
	quiz, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
	}

	return quiz, nil
}

// ByCategory возвращает квизы одной категории.
func (c *Catalog) ByCategory(category Category) []*Quiz {
	var out []*Quiz
	for _, quiz := range c.quizzes {
		if quiz.Category == category {
			out = append(out, quiz)
		}
	}

	return out
}

// ByDifficulty возвращает квизы одной сложности.
func (c *Catalog) ByDifficulty(difficulty Difficulty) []*Quiz {
	var out []*Quiz
	for _, quiz := range c.quizzes {
		if quiz.Difficulty == difficulty {
			out = append(out, quiz)
		}
	}

	return out
}

// CategoryCounts возвращает количество квизов в каждой категории.
func (c *Catalog) CategoryCounts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, category := range Categories {
		counts[category] = 0
	}

	for _, quiz := range c.quizzes {
		counts[quiz.Category]++
	}

	return counts
}
