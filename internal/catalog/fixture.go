package catalog

import (
	_ "embed"
)

//go:embed quizzes.json
var builtinQuizzes []byte

// Default возвращает встроенный каталог квизов.
func Default() (*Catalog, error) {
	return LoadJSON(builtinQuizzes)
}
