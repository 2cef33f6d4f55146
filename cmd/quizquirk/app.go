package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/letsssgooo/quizquirk/internal/catalog"
	"github.com/letsssgooo/quizquirk/internal/quiz"
	"github.com/letsssgooo/quizquirk/internal/stats"
)

var errUnknownCommand = errors.New("unknown command")

type app struct {
	catalog *catalog.Catalog
	store   *stats.Store
	in      *bufio.Scanner
	out     io.Writer
	log     *slog.Logger
}

func newApp(cat *catalog.Catalog, store *stats.Store, in io.Reader, out io.Writer, log *slog.Logger) *app {
	return &app{
		catalog: cat,
		store:   store,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return a.list()
	case "play":
		if len(rest) != 1 {
			return errors.New("play needs a quiz number or id")
		}
		return a.play(ctx, rest[0])
	case "results":
		filter := ""
		if len(rest) > 0 {
			filter = rest[0]
		}
		return a.results(ctx, filter)
	case "stats":
		return a.stats(ctx)
	case "export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		return a.export(ctx, path)
	case "rebuild":
		if _, err := a.store.Rebuild(ctx); err != nil {
			return err
		}
		return a.stats(ctx)
	case "reset":
		return a.reset(ctx)
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
}

func (a *app) list() error {
	counts := a.catalog.CategoryCounts()
	for i, q := range a.catalog.ListQuizzes() {
		fmt.Fprintf(a.out, "%d. %s [%s, %s] %d questions\n   %s\n",
			i+1, q.Title, q.Category.DisplayName(), q.Difficulty, len(q.Questions), q.Description)
	}

	fmt.Fprintln(a.out)
	for _, category := range catalog.Categories {
		fmt.Fprintf(a.out, "%s: %d\n", category.DisplayName(), counts[category])
	}

	return nil
}

func (a *app) findQuiz(ref string) (*catalog.Quiz, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		quizzes := a.catalog.ListQuizzes()
		if n < 1 || n > len(quizzes) {
			return nil, fmt.Errorf("%w: number %d", catalog.ErrQuizNotFound, n)
		}
		return quizzes[n-1], nil
	}

	return a.catalog.GetQuiz(ref)
}

func (a *app) play(ctx context.Context, ref string) error {
	q, err := a.findQuiz(ref)
	if err != nil {
		return err
	}

	engine := quiz.NewEngine(a.store, quiz.WithLogger(a.log))
	cancel := engine.Subscribe(func(s quiz.Snapshot) {
		if s.State == quiz.StateInProgress {
			fmt.Fprintf(a.out, "\n[%d/%d] %3.0f%%  score %d\n", s.Index+1, s.Total, s.Progress*100, s.Score)
		}
	})
	defer cancel()

	fmt.Fprintf(a.out, "%s: %s\n", q.Title, q.Description)

	if err = engine.Start(q); err != nil {
		return err
	}

	for engine.State() != quiz.StateComplete {
		question, _ := engine.CurrentQuestion()

		fmt.Fprintln(a.out, question.Text)
		for i, option := range question.Options {
			fmt.Fprintf(a.out, "  %s) %s\n", quiz.IndexToLetter(i), option)
		}
		fmt.Fprint(a.out, "> ")

		if !a.in.Scan() {
			engine.Reset()
			fmt.Fprintln(a.out, "\nquiz abandoned")
			return a.in.Err()
		}

		answer := strings.TrimSpace(a.in.Text())
		if strings.EqualFold(answer, "q") {
			engine.Reset()
			fmt.Fprintln(a.out, "quiz abandoned")
			return nil
		}

		if err = engine.SelectAnswerByLetter(answer); err != nil {
			if errors.Is(err, quiz.ErrInvalidInput) {
				fmt.Fprintf(a.out, "choose one of A-%s or q to quit\n", quiz.IndexToLetter(len(question.Options)-1))
				continue
			}
			return err
		}

		selected, _ := engine.Selected()
		if question.IsCorrect(selected) {
			fmt.Fprintln(a.out, color.GreenString("Correct!"))
		} else {
			fmt.Fprintf(a.out, "%s The answer is %s) %s\n", color.RedString("Wrong."),
				quiz.IndexToLetter(question.CorrectAnswer), question.Options[question.CorrectAnswer])
		}
		if question.Explanation != "" {
			fmt.Fprintln(a.out, question.Explanation)
		}

		result, err := engine.Advance(ctx)
		if errors.Is(err, quiz.ErrPersist) {
			fmt.Fprintln(a.out, color.YellowString("result could not be saved"))
		} else if err != nil {
			return err
		}

		if result != nil {
			a.printCompletion(result)
		}
	}

	return nil
}

func (a *app) printCompletion(r *stats.Result) {
	percentage := r.Percentage()

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, tierColor(stats.TierOf(percentage)).Sprint(r.Grade()))
	fmt.Fprintf(a.out, "Score: %d/%d (%.0f%%)\n", r.Score, r.TotalQuestions, percentage)
	fmt.Fprintf(a.out, "Time: %s\n", stats.FormatDuration(r.TimeTaken))
}

func (a *app) results(ctx context.Context, filter string) error {
	results := a.store.GetResults(ctx)

	if filter != "" {
		category := catalog.Category(filter)
		if !category.Valid() {
			return fmt.Errorf("unknown category %q", filter)
		}
		results = stats.FilterByCategory(results, category)
	}

	if len(results) == 0 {
		fmt.Fprintln(a.out, "no results yet")
		return nil
	}

	for _, r := range results {
		percentage := r.Percentage()
		fmt.Fprintf(a.out, "%s  %-22s %-18s %d/%d %s %-12s %s\n",
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			r.QuizTitle,
			r.Category.DisplayName(),
			r.Score, r.TotalQuestions,
			tierColor(stats.TierOf(percentage)).Sprintf("%4.0f%%", percentage),
			r.Grade(),
			stats.FormatDuration(r.TimeTaken),
		)
	}

	return nil
}

func (a *app) stats(ctx context.Context) error {
	s := a.store.GetStats(ctx)

	favorite := "-"
	if s.FavoriteCategory != nil {
		favorite = s.FavoriteCategory.DisplayName()
	}

	fmt.Fprintf(a.out, "%-20s%d\n", "Quizzes taken:", s.TotalQuizzesTaken)
	fmt.Fprintf(a.out, "%-20s%d\n", "Questions answered:", s.TotalQuestionsAnswered)
	fmt.Fprintf(a.out, "%-20s%d\n", "Correct answers:", s.TotalCorrectAnswers)
	fmt.Fprintf(a.out, "%-20s%.1f%%\n", "Accuracy:", s.Accuracy())
	fmt.Fprintf(a.out, "%-20s%.1f%%\n", "Average score:", s.AverageScore)
	fmt.Fprintf(a.out, "%-20s%s\n", "Favorite category:", favorite)

	return nil
}

func (a *app) export(ctx context.Context, path string) error {
	data, err := a.store.ExportCSV(ctx)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = a.out.Write(data)
		return err
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	a.log.Info("history exported", "path", path)

	return nil
}

func (a *app) reset(ctx context.Context) error {
	fmt.Fprint(a.out, "Delete all results and statistics? [y/N] ")
	if !a.in.Scan() || !strings.EqualFold(strings.TrimSpace(a.in.Text()), "y") {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}

	if err := a.store.DeleteAll(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "history deleted")

	return nil
}

func tierColor(t stats.Tier) *color.Color {
	switch t {
	case stats.TierGreen:
		return color.New(color.FgGreen)
	case stats.TierBlue:
		return color.New(color.FgBlue)
	case stats.TierYellow:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
