package combat

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/napolitain/fleetsim/internal/models"
)

// ErrNoTrials is returned when the averager is asked for zero trials
var ErrNoTrials = errors.New("trial count must be positive")

// Report is the averaged result of many independent trials
type Report struct {
	Attacker     models.Fleet // rounded mean survivors
	Defender     models.Fleet
	Trials       int
	Seed         uint64
	AttackerWins int
	DefenderWins int
	Draws        int
	MeanRounds   float64
}

// WinRate returns the fraction of trials with the given outcome
func (r *Report) WinRate(o Outcome) float64 {
	if r.Trials == 0 {
		return 0
	}
	switch o {
	case AttackerWins:
		return float64(r.AttackerWins) / float64(r.Trials)
	case DefenderWins:
		return float64(r.DefenderWins) / float64(r.Trials)
	default:
		return float64(r.Draws) / float64(r.Trials)
	}
}

// Averager repeats battles and averages the survivors
type Averager struct {
	engine   *Engine
	workers  int
	seed     uint64
	logger   *zap.Logger
	progress func(done int)
}

// AveragerOption configures an Averager
type AveragerOption func(*Averager)

// WithWorkers sets how many goroutines run trials. Values < 1 mean GOMAXPROCS.
func WithWorkers(n int) AveragerOption {
	return func(a *Averager) {
		a.workers = n
	}
}

// WithSeed fixes the base seed. 0 picks a random seed per run.
func WithSeed(seed uint64) AveragerOption {
	return func(a *Averager) {
		a.seed = seed
	}
}

// WithProgress registers a callback invoked after each finished trial with
// the number of trials done so far. It is called from worker goroutines.
func WithProgress(fn func(done int)) AveragerOption {
	return func(a *Averager) {
		a.progress = fn
	}
}

// WithAveragerLogger sets the logger for run summaries
func WithAveragerLogger(logger *zap.Logger) AveragerOption {
	return func(a *Averager) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAverager creates an averager running trials on engine
func NewAverager(engine *Engine, opts ...AveragerOption) *Averager {
	a := &Averager{
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// tally accumulates per-kind survivors and outcomes of a set of trials
type tally struct {
	attacker     [models.UnitKindCount]uint64
	defender     [models.UnitKindCount]uint64
	attackerWins int
	defenderWins int
	draws        int
	rounds       uint64
}

func (t *tally) add(res BattleResult) {
	res.Attacker.Each(func(k models.UnitKind, n uint64) {
		t.attacker[k] = models.SaturatingAdd(t.attacker[k], n)
	})
	res.Defender.Each(func(k models.UnitKind, n uint64) {
		t.defender[k] = models.SaturatingAdd(t.defender[k], n)
	})
	switch res.Outcome {
	case AttackerWins:
		t.attackerWins++
	case DefenderWins:
		t.defenderWins++
	default:
		t.draws++
	}
	t.rounds += uint64(res.Rounds)
}

func (t *tally) merge(o tally) {
	for i := range t.attacker {
		t.attacker[i] = models.SaturatingAdd(t.attacker[i], o.attacker[i])
		t.defender[i] = models.SaturatingAdd(t.defender[i], o.defender[i])
	}
	t.attackerWins += o.attackerWins
	t.defenderWins += o.defenderWins
	t.draws += o.draws
	t.rounds += o.rounds
}

// Run fights trials independent battles. Trial i draws from stream i of the
// base seed, so a fixed seed gives the same report for any worker count.
func (a *Averager) Run(attacker, defender models.Player, trials int) (*Report, error) {
	return a.RunContext(context.Background(), attacker, defender, trials)
}

// RunContext is Run with cancellation. Workers stop before their next trial
// once ctx is done, and the context error is returned without a report.
func (a *Averager) RunContext(ctx context.Context, attacker, defender models.Player, trials int) (*Report, error) {
	if trials <= 0 {
		return nil, ErrNoTrials
	}

	seed := a.seed
	if seed == 0 {
		seed = RandomSeed()
	}
	workers := a.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > trials {
		workers = trials
	}

	start := time.Now()
	partials := make([]tally, workers)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < trials; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				res := a.engine.Simulate(attacker, defender, NewRand(seed, uint64(i)))
				partials[w].add(res)
				if a.progress != nil {
					a.progress(int(done.Add(1)))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total tally
	for _, p := range partials {
		total.merge(p)
	}

	report := &Report{
		Trials:       trials,
		Seed:         seed,
		AttackerWins: total.attackerWins,
		DefenderWins: total.defenderWins,
		Draws:        total.draws,
		MeanRounds:   float64(total.rounds) / float64(trials),
	}
	for i := 0; i < models.UnitKindCount; i++ {
		k := models.UnitKind(i)
		report.Attacker.Set(k, roundedMean(total.attacker[i], trials))
		report.Defender.Set(k, roundedMean(total.defender[i], trials))
	}

	a.logger.Info("simulation finished",
		zap.Int("trials", trials),
		zap.Int("workers", workers),
		zap.Uint64("seed", seed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func roundedMean(sum uint64, trials int) uint64 {
	mean := math.Round(float64(sum) / float64(trials))
	if mean >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(mean)
}

// SimulateAverage runs trials battles with the default engine settings and
// returns the rounded mean survivors of each side.
func SimulateAverage(data *Data, attacker, defender models.Player, trials int) (models.Fleet, models.Fleet, error) {
	report, err := NewAverager(NewEngine(data)).Run(attacker, defender, trials)
	if err != nil {
		return models.Fleet{}, models.Fleet{}, err
	}
	return report.Attacker, report.Defender, nil
}
