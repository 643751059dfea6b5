// simulation/simulation.go
package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sort"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/engine"
	"github.com/remaimber-it/quizengine/internal/service"
	"github.com/remaimber-it/quizengine/internal/session"
	"github.com/remaimber-it/quizengine/internal/worker"
)

// ErrPaced is returned when the registry's controllers wait between
// questions; simulated learners need intro and advance delays of zero.
var ErrPaced = errors.New("simulation requires zero intro and advance delays")

// Profile describes how a simulated learner behaves.
type Profile struct {
	LearnerID string
	Accuracy  float64 // chance the first answer is right
	HintRate  float64 // chance of asking for a hint before answering
}

type Config struct {
	Sessions int
	Session  quiz.SessionConfig
	Workers  int
	Seed     int64
}

// Report is the outcome for one simulated learner.
type Report struct {
	LearnerID  string            `json:"learner_id"`
	Summaries  []session.Summary `json:"summaries"`
	Hints      int               `json:"hints"`
	Engagement engine.Result     `json:"engagement"`
	Err        error             `json:"-"`
}

// Run plays cfg.Sessions sessions for every profile, learners in parallel.
// Reports come back sorted by learner id.
func Run(ctx context.Context, reg *service.Registry, profiles []Profile, cfg Config) []Report {
	pool := worker.NewPool[Report](ctx, cfg.Workers, len(profiles))

	go func() {
		for i, p := range profiles {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			pool.Submit(p.LearnerID, func(ctx context.Context) Report {
				return play(ctx, reg, p, cfg, rng)
			})
		}
		pool.Close()
	}()

	reports := make([]Report, 0, len(profiles))
	for res := range pool.Results() {
		reports = append(reports, res.Output)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].LearnerID < reports[j].LearnerID })
	return reports
}

func play(ctx context.Context, reg *service.Registry, p Profile, cfg Config, rng *rand.Rand) Report {
	rep := Report{LearnerID: p.LearnerID}

	l, err := reg.Learner(p.LearnerID)
	if err != nil {
		rep.Err = err
		return rep
	}

	for range cfg.Sessions {
		if err := ctx.Err(); err != nil {
			rep.Err = err
			break
		}
		if err := playSession(ctx, reg.Questions(), l, p, cfg.Session, rng, &rep); err != nil {
			rep.Err = err
			break
		}
		if sum, ok := l.Quiz.LastSummary(); ok {
			rep.Summaries = append(rep.Summaries, sum)
		}
	}

	_, rep.Engagement = l.Progress(ctx)
	return rep
}

func playSession(ctx context.Context, bank *quiz.Bank, l *service.Learner, p Profile, cfg quiz.SessionConfig, rng *rand.Rand, rep *Report) error {
	view := l.Quiz.StartSession(ctx, cfg)

	for view.State != session.StateIdle {
		if view.Question == nil {
			return ErrPaced
		}
		q, ok := bank.Question(view.Question.ID)
		if !ok {
			return errors.New("presented question missing from bank: " + view.Question.ID)
		}

		if rng.Float64() < p.HintRate {
			if _, err := l.Quiz.SpeakHint(ctx); err != nil {
				return err
			}
			rep.Hints++
		}

		res, err := l.Quiz.Answer(ctx, pickOption(q, rng.Float64() < p.Accuracy, rng))
		if err != nil {
			return err
		}
		if !res.Correct {
			// Second attempt always lands.
			if _, err := l.Quiz.Answer(ctx, correctOption(q)); err != nil {
				return err
			}
		}

		view = l.Quiz.View()
		if view.State == session.StateAnswerCorrect {
			return ErrPaced
		}
	}
	return nil
}

func correctOption(q quiz.Question) int {
	for i, opt := range q.Options {
		if q.IsCorrect(opt) {
			return i
		}
	}
	return 0
}

func pickOption(q quiz.Question, right bool, rng *rand.Rand) int {
	correct := correctOption(q)
	if right || len(q.Options) < 2 {
		return correct
	}
	wrong := rng.Intn(len(q.Options) - 1)
	if wrong >= correct {
		wrong++
	}
	return wrong
}
