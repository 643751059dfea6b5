// Command simulate plays simulated learners of varying skill through real
// quiz sessions and prints how their engagement settles.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/remaimber-it/quizengine/internal/dataset"
	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/engine"
	"github.com/remaimber-it/quizengine/internal/hint"
	"github.com/remaimber-it/quizengine/internal/infrastructure/logging"
	"github.com/remaimber-it/quizengine/internal/service"
	"github.com/remaimber-it/quizengine/internal/session"
	"github.com/remaimber-it/quizengine/internal/simulation"
	"github.com/remaimber-it/quizengine/internal/store"
)

func main() {
	var (
		bankPath = flag.String("questions", "data/ict_quiz.json", "question bank file")
		dbPath   = flag.String("db", ":memory:", "SQLite file for learner stats")
		learners = flag.Int("learners", 5, "number of simulated learners")
		sessions = flag.Int("sessions", 4, "sessions per learner")
		kind     = flag.String("type", string(quiz.SessionPractice), "session type")
		category = flag.String("category", "", "category filter")
		limit    = flag.Int("limit", 10, "questions per session")
		workers  = flag.Int("workers", 4, "learners simulated in parallel")
		seed     = flag.Int64("seed", 1, "random seed")
		asJSON   = flag.Bool("json", false, "print reports as JSON")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, "text")

	sessionType, err := quiz.ParseSessionType(*kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bank, err := dataset.LoadQuestionBank(*bankPath)
	if err != nil {
		logger.Error("failed to load question bank", "error", err)
		os.Exit(1)
	}

	kv, err := store.NewSQLite(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := service.NewRegistry(kv, bank, nil, hint.Disabled{}, service.Config{
		Session:  session.Config{HintCap: session.DefaultConfig().HintCap},
		Selector: engine.NewSelector(nil),
	}, logger)

	reports := simulation.Run(ctx, reg, profiles(*learners), simulation.Config{
		Sessions: *sessions,
		Session: quiz.SessionConfig{
			Type:     sessionType,
			Category: *category,
			Limit:    *limit,
		},
		Workers: *workers,
		Seed:    *seed,
	})

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			logger.Error("failed to encode reports", "error", err)
			os.Exit(1)
		}
		return
	}
	printTable(reports)
}

// profiles spreads skill evenly from struggling to confident learners.
func profiles(n int) []simulation.Profile {
	out := make([]simulation.Profile, n)
	for i := range out {
		skill := 0.2
		if n > 1 {
			skill += 0.75 * float64(i) / float64(n-1)
		}
		out[i] = simulation.Profile{
			LearnerID: fmt.Sprintf("sim-%02d", i+1),
			Accuracy:  skill,
			HintRate:  1 - skill,
		}
	}
	return out
}

func printTable(reports []simulation.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEARNER\tSESSIONS\tCORRECT\tANSWERED\tHINTS\tSCORE\tLEVEL\tWEAK\tERROR")
	for _, r := range reports {
		var correct, answered int
		for _, s := range r.Summaries {
			correct += s.Correct
			answered += s.Answered
		}
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%s\t%v\t%s\n",
			r.LearnerID, len(r.Summaries), correct, answered, r.Hints,
			r.Engagement.Score, r.Engagement.Level, r.Engagement.WeakCategories, errText)
	}
	tw.Flush()
}
