package combat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/napolitain/fleetsim/internal/models"
)

func TestAveragerRejectsNoTrials(t *testing.T) {
	avg := NewAverager(NewEngine(DefaultData()))
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 1})

	for _, trials := range []int{0, -1, -1000} {
		if _, err := avg.Run(att, att, trials); !errors.Is(err, ErrNoTrials) {
			t.Errorf("trials=%d: err = %v, want ErrNoTrials", trials, err)
		}
	}
	if _, _, err := SimulateAverage(DefaultData(), att, att, 0); !errors.Is(err, ErrNoTrials) {
		t.Errorf("SimulateAverage err = %v, want ErrNoTrials", err)
	}
}

func TestAveragerLopsidedBattle(t *testing.T) {
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.Battleship: 100})
	def := player(models.TechLevels{}, map[models.UnitKind]uint64{models.EspionageProbe: 1})

	report, err := NewAverager(NewEngine(DefaultData()), WithSeed(99)).Run(att, def, 10000)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.Attacker.Get(models.Battleship); got != 100 {
		t.Errorf("battleships = %d, want 100", got)
	}
	if !report.Defender.IsEmpty() {
		t.Errorf("defender = %v, want empty", report.Defender)
	}
	if report.AttackerWins != 10000 || report.WinRate(AttackerWins) != 1 {
		t.Errorf("attacker wins = %d, want all", report.AttackerWins)
	}
	if report.MeanRounds != 1 {
		t.Errorf("MeanRounds = %v, want 1", report.MeanRounds)
	}
}

func TestAveragerSameSeedAnyWorkerCount(t *testing.T) {
	att := player(models.TechLevels{Weapon: 3}, map[models.UnitKind]uint64{
		models.LightFighter: 100,
		models.HeavyFighter: 20,
	})
	def := player(models.TechLevels{Armor: 2}, map[models.UnitKind]uint64{
		models.MissileLauncher: 50,
		models.LightLaser:      20,
	})
	engine := NewEngine(DefaultData())

	var reports []*Report
	for _, workers := range []int{1, 3, 8} {
		r, err := NewAverager(engine, WithSeed(2024), WithWorkers(workers)).Run(att, def, 200)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		reports = append(reports, r)
	}
	for i, r := range reports[1:] {
		if *r != *reports[0] {
			t.Errorf("report %d differs from single worker run:\n%+v\n%+v", i+1, *r, *reports[0])
		}
	}
}

func TestAveragerSurvivorsBounded(t *testing.T) {
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 100})
	def := player(models.TechLevels{}, map[models.UnitKind]uint64{models.MissileLauncher: 50})

	attFleet, defFleet, err := SimulateAverage(DefaultData(), att, def, 300)
	if err != nil {
		t.Fatalf("SimulateAverage: %v", err)
	}
	if attFleet.Get(models.LightFighter) > 100 || defFleet.Get(models.MissileLauncher) > 50 {
		t.Errorf("survivors %v / %v exceed input", attFleet, defFleet)
	}
	for _, k := range models.AllUnitKinds() {
		if k != models.LightFighter && attFleet.Get(k) != 0 {
			t.Errorf("attacker gained %s", k)
		}
		if k != models.MissileLauncher && defFleet.Get(k) != 0 {
			t.Errorf("defender gained %s", k)
		}
	}
}

func TestAveragerReportsProgressAndLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var calls, maxDone atomic.Int64
	avg := NewAverager(NewEngine(DefaultData()),
		WithSeed(5),
		WithWorkers(4),
		WithAveragerLogger(zap.New(core)),
		WithProgress(func(done int) {
			calls.Add(1)
			for {
				cur := maxDone.Load()
				if int64(done) <= cur || maxDone.CompareAndSwap(cur, int64(done)) {
					return
				}
			}
		}),
	)

	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.Cruiser: 5})
	def := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 20})
	report, err := avg.Run(att, def, 64)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if calls.Load() != 64 || maxDone.Load() != 64 {
		t.Errorf("progress calls = %d, max done = %d, want 64/64", calls.Load(), maxDone.Load())
	}
	if report.Seed != 5 || report.Trials != 64 {
		t.Errorf("report seed/trials = %d/%d", report.Seed, report.Trials)
	}
	if sum := report.AttackerWins + report.DefenderWins + report.Draws; sum != 64 {
		t.Errorf("outcome tallies sum to %d, want 64", sum)
	}

	entries := logs.FilterMessage("simulation finished").All()
	if len(entries) != 1 {
		t.Fatalf("got %d summary logs, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["trials"]; got != int64(64) {
		t.Errorf("logged trials = %v", got)
	}
}

func TestAveragerRunContextCanceled(t *testing.T) {
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.Cruiser: 5})
	def := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 20})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := NewAverager(NewEngine(DefaultData()), WithSeed(1)).RunContext(ctx, att, def, 100)
	if !errors.Is(err, context.Canceled) || report != nil {
		t.Errorf("pre-canceled run = %v, %v; want nil, context.Canceled", report, err)
	}

	// Cancel from inside the run: every worker stops before its next trial.
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	var done atomic.Int64
	avg := NewAverager(NewEngine(DefaultData()),
		WithSeed(1),
		WithWorkers(2),
		WithProgress(func(n int) {
			done.Store(int64(n))
			if n == 10 {
				cancel()
			}
		}),
	)
	if _, err := avg.RunContext(ctx, att, def, 10000); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n := done.Load(); n >= 10000 {
		t.Errorf("run finished all %d trials after cancel", n)
	}
}

func TestAveragerRandomSeedWhenUnset(t *testing.T) {
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 1})
	report, err := NewAverager(NewEngine(DefaultData())).Run(att, models.Player{}, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Seed == 0 {
		t.Error("random seed left at 0")
	}
}

func TestRoundedMean(t *testing.T) {
	tests := []struct {
		sum    uint64
		trials int
		want   uint64
	}{
		{0, 10, 0},
		{14, 10, 1},
		{15, 10, 2},
		{1000, 1000, 1},
		{^uint64(0), 1, ^uint64(0)},
	}
	for _, tt := range tests {
		if got := roundedMean(tt.sum, tt.trials); got != tt.want {
			t.Errorf("roundedMean(%d, %d) = %d, want %d", tt.sum, tt.trials, got, tt.want)
		}
	}
}

func BenchmarkAveragerRun(b *testing.B) {
	att := player(models.TechLevels{Weapon: 10, Shield: 10, Armor: 10}, map[models.UnitKind]uint64{
		models.LightFighter: 500,
		models.Cruiser:      100,
		models.Battleship:   50,
	})
	def := player(models.TechLevels{Weapon: 10, Shield: 10, Armor: 10}, map[models.UnitKind]uint64{
		models.MissileLauncher: 1000,
		models.LightLaser:      500,
		models.GaussCannon:     20,
	})
	avg := NewAverager(NewEngine(DefaultData()), WithSeed(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := avg.Run(att, def, 100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSimulate(b *testing.B) {
	engine := NewEngine(DefaultData())
	att := player(models.TechLevels{}, map[models.UnitKind]uint64{models.LightFighter: 1000})
	def := player(models.TechLevels{}, map[models.UnitKind]uint64{models.MissileLauncher: 500})
	r := NewRand(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Simulate(att, def, r)
	}
}
