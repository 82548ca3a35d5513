package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/models"
	"github.com/napolitain/fleetsim/internal/scenario"
)

func parseSimulateFlags(t *testing.T, args ...string) (*scenario.Scenario, error) {
	t.Helper()
	opts := &simulateOptions{}
	cmd := newSimulateCmdWith(opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return resolveScenario(cmd, opts)
}

func TestResolveScenarioFromFlags(t *testing.T) {
	s, err := parseSimulateFlags(t,
		"-a", "light_fighter=100,cruiser=5",
		"-d", "missile_launcher=50",
		"--attacker-tech", "10,9,8",
		"--seed", "7",
	)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	att, def, err := s.Players()
	if err != nil {
		t.Fatal(err)
	}
	if att.Fleet.Get(models.LightFighter) != 100 || att.Fleet.Get(models.Cruiser) != 5 {
		t.Errorf("attacker = %v", att.Fleet)
	}
	if def.Fleet.Get(models.MissileLauncher) != 50 {
		t.Errorf("defender = %v", def.Fleet)
	}
	if att.Tech != (models.TechLevels{Weapon: 10, Shield: 9, Armor: 8}) || def.Tech != (models.TechLevels{}) {
		t.Errorf("tech = %+v / %+v", att.Tech, def.Tech)
	}
	if s.Trials != defaultTrials || s.Seed != 7 {
		t.Errorf("trials/seed = %d/%d", s.Trials, s.Seed)
	}
}

func TestResolveScenarioFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.yaml")
	content := `
attacker: {units: {battleship: 10}, tech: {weapon: 5}}
defender: {units: {plasma_turret: 2}}
trials: 250
seed: 11
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := parseSimulateFlags(t, "-s", path)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if s.Trials != 250 || s.Seed != 11 || s.Attacker.Units["battleship"] != 10 {
		t.Errorf("file values lost: %+v", s)
	}

	s, err = parseSimulateFlags(t, "-s", path, "-d", "gauss_cannon=3", "-t", "40")
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if s.Trials != 40 || s.Seed != 11 {
		t.Errorf("trials/seed = %d/%d", s.Trials, s.Seed)
	}
	if len(s.Defender.Units) != 1 || s.Defender.Units["gauss_cannon"] != 3 {
		t.Errorf("defender override = %v", s.Defender.Units)
	}
	if s.Attacker.Tech.Weapon != 5 {
		t.Errorf("attacker tech from file lost")
	}
}

func TestResolveScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no fleets", nil},
		{"unknown unit", []string{"-a", "x_wing=3"}},
		{"negative count", []string{"-a", "cruiser=-3"}},
		{"short tech", []string{"-a", "cruiser=1", "--attacker-tech", "1,2"}},
		{"negative tech", []string{"-a", "cruiser=1", "--defender-tech", "1,2,-3"}},
		{"bad trials", []string{"-a", "cruiser=1", "-t", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSimulateFlags(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := parseSimulateFlags(t, "-s", "missing.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing scenario err = %v", err)
	}
}

func TestUnitsFromFlagMergesSpellings(t *testing.T) {
	units, err := unitsFromFlag(map[string]int64{"light_fighter": 3, "LightFighter": 2, "2": 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units["light_fighter"] != 6 {
		t.Errorf("units = %v", units)
	}
}

func TestSimulationOutput(t *testing.T) {
	attacker := models.Player{Fleet: models.NewFleet(map[models.UnitKind]uint64{models.LightFighter: 10})}
	defender := models.Player{Fleet: models.NewFleet(map[models.UnitKind]uint64{models.MissileLauncher: 4})}
	report := &combat.Report{
		Attacker:     models.NewFleet(map[models.UnitKind]uint64{models.LightFighter: 7}),
		Trials:       10,
		Seed:         3,
		AttackerWins: 8,
		Draws:        2,
		MeanRounds:   2.5,
	}

	out := newSimulationOutput(report, attacker, defender, models.DefaultStatsTable())
	if out.Attacker.Lost["light_fighter"] != 3 {
		t.Errorf("attacker lost = %v", out.Attacker.Lost)
	}
	if out.Attacker.LostResources != (models.Costs{Metal: 9000, Crystal: 3000}) {
		t.Errorf("attacker lost resources = %+v", out.Attacker.LostResources)
	}
	if out.Defender.Lost["missile_launcher"] != 4 || out.Defender.LostResources.Metal != 8000 {
		t.Errorf("defender = %+v", out.Defender)
	}
	if out.AttackerWinRate != 0.8 || out.DrawRate != 0.2 || out.DefenderWinRate != 0 {
		t.Errorf("rates = %v %v %v", out.AttackerWinRate, out.DefenderWinRate, out.DrawRate)
	}
}

func TestBattleOutput(t *testing.T) {
	engine := combat.NewEngine(combat.DefaultData(), combat.WithHistory())
	att := models.Player{Fleet: models.NewFleet(map[models.UnitKind]uint64{models.Battleship: 5})}
	def := models.Player{Fleet: models.NewFleet(map[models.UnitKind]uint64{models.LightFighter: 1})}

	out := newBattleOutput(engine.Simulate(att, def, combat.NewRand(1, 0)), 1)
	if out.Outcome != "attacker wins" || len(out.Rounds) != 1 {
		t.Fatalf("battle = %+v", out)
	}
	if len(out.Rounds[0].Defender) != 0 || out.Rounds[0].Attacker["battleship"] != 5 {
		t.Errorf("round 1 = %+v", out.Rounds[0])
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = newProgressModel(200)

	m, _ = m.Update(progressMsg(50))
	m, _ = m.Update(progressMsg(20)) // late message from a slower worker
	if got := m.(progressModel).done; got != 50 {
		t.Errorf("done = %d, want 50", got)
	}
	if view := m.View(); !strings.Contains(view, "25%") || !strings.Contains(view, "50/200") {
		t.Errorf("view = %q", view)
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Error("done message did not quit")
	}
	if !m.(progressModel).finished || !strings.Contains(m.View(), "200/200") {
		t.Errorf("final view = %q", m.View())
	}
}

func TestProgressModelCtrlCCancels(t *testing.T) {
	var m tea.Model = newProgressModel(100)
	m, _ = m.Update(progressMsg(30))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("ctrl+c did not quit")
	}
	got := m.(progressModel)
	if !got.canceled || got.finished || got.done != 30 {
		t.Errorf("model after ctrl+c = %+v", got)
	}
}

func TestProgressStep(t *testing.T) {
	for trials, want := range map[int]int{1: 1, 100: 1, 399: 1, 1000: 5, 1000000: 5000} {
		if got := progressStep(trials); got != want {
			t.Errorf("progressStep(%d) = %d, want %d", trials, got, want)
		}
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	old := logLevel
	t.Cleanup(func() { logLevel = old })

	logLevel = "loud"
	if _, err := newLogger(); err == nil {
		t.Error("invalid level accepted")
	}
	logLevel = "debug"
	logger, err := newLogger()
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	_ = logger.Sync()
}
