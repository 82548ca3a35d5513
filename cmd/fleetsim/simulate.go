package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/models"
	"github.com/napolitain/fleetsim/internal/scenario"
)

const defaultTrials = 1000

type simulateOptions struct {
	scenarioFile string
	saveFile     string
	attacker     map[string]int64
	defender     map[string]int64
	attackerTech []int
	defenderTech []int
	trials       int
	seed         uint64
	workers      int
	progress     bool
	single       bool
	output       string
}

func newSimulateCmd() *cobra.Command {
	return newSimulateCmdWith(&simulateOptions{})
}

func newSimulateCmdWith(opts *simulateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Average many battles between two fleets",
		Example: `  fleetsim simulate -a light_fighter=100 -d missile_launcher=50
  fleetsim simulate -s battle.yaml --seed 42 -o json
  fleetsim simulate -a cruiser=20 -d light_laser=80 --attacker-tech 10,10,10 --single`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	bindSimulateFlags(cmd.Flags(), opts)
	return cmd
}

func bindSimulateFlags(f *pflag.FlagSet, opts *simulateOptions) {
	f.StringVarP(&opts.scenarioFile, "scenario", "s", "", "Scenario file (.yaml, .yml, .json, .pb)")
	f.StringVar(&opts.saveFile, "save", "", "Write the resolved scenario to this file")
	f.StringToInt64VarP(&opts.attacker, "attacker", "a", nil, "Attacking units as kind=count")
	f.StringToInt64VarP(&opts.defender, "defender", "d", nil, "Defending units as kind=count")
	f.IntSliceVar(&opts.attackerTech, "attacker-tech", nil, "Attacker weapon,shield,armor levels")
	f.IntSliceVar(&opts.defenderTech, "defender-tech", nil, "Defender weapon,shield,armor levels")
	f.IntVarP(&opts.trials, "trials", "t", defaultTrials, "Number of independent battles")
	f.Uint64Var(&opts.seed, "seed", 0, "Base seed (0 picks a random one)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Worker goroutines (0 = GOMAXPROCS)")
	f.BoolVar(&opts.progress, "progress", false, "Show a live progress bar (ctrl+c stops the run)")
	f.BoolVar(&opts.single, "single", false, "Fight one battle and print every round")
	f.StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or yaml")
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	switch opts.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	s, err := resolveScenario(cmd, opts)
	if err != nil {
		return err
	}
	if opts.saveFile != "" {
		if err := scenario.Save(opts.saveFile, s); err != nil {
			return err
		}
	}
	attacker, defender, err := s.Players()
	if err != nil {
		return err
	}

	logger, data, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pretty := opts.output == "table"
	if pretty && !quiet {
		printBanner("Fleet Battle Simulator")
		printFleets(attacker, defender)
	}

	engineOpts := []combat.EngineOption{combat.WithLogger(logger.Named("engine"))}
	if opts.single {
		engineOpts = append(engineOpts, combat.WithHistory())
		return runSingle(combat.NewEngine(data, engineOpts...), attacker, defender, s.Seed, opts.output)
	}
	engine := combat.NewEngine(data, engineOpts...)

	avgOpts := []combat.AveragerOption{
		combat.WithSeed(s.Seed),
		combat.WithWorkers(opts.workers),
		combat.WithAveragerLogger(logger.Named("averager")),
	}

	var report *combat.Report
	start := time.Now()
	if opts.progress && pretty {
		report, err = runWithProgress(engine, avgOpts, attacker, defender, s.Trials)
	} else {
		report, err = combat.NewAverager(engine, avgOpts...).Run(attacker, defender, s.Trials)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := newSimulationOutput(report, attacker, defender, data.Stats())
	switch opts.output {
	case "json":
		return writeJSON(out)
	case "yaml":
		return writeYAML(out)
	}

	if !quiet {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Printf("\n✓ %d trials in %s (seed %d)\n\n", report.Trials, elapsed.Round(time.Millisecond), report.Seed)
	}
	printReport(report, attacker, defender, data.Stats())
	return nil
}

// resolveScenario merges the scenario file with command line flags.
// Flags that were set explicitly win over file values.
func resolveScenario(cmd *cobra.Command, opts *simulateOptions) (*scenario.Scenario, error) {
	s := &scenario.Scenario{}
	if opts.scenarioFile != "" {
		loaded, err := scenario.Load(opts.scenarioFile)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("attacker") {
		units, err := unitsFromFlag(opts.attacker)
		if err != nil {
			return nil, fmt.Errorf("--attacker: %w", err)
		}
		s.Attacker.Units = units
	}
	if flags.Changed("defender") {
		units, err := unitsFromFlag(opts.defender)
		if err != nil {
			return nil, fmt.Errorf("--defender: %w", err)
		}
		s.Defender.Units = units
	}
	if flags.Changed("attacker-tech") {
		tech, err := techFromFlag(opts.attackerTech)
		if err != nil {
			return nil, fmt.Errorf("--attacker-tech: %w", err)
		}
		s.Attacker.Tech = tech
	}
	if flags.Changed("defender-tech") {
		tech, err := techFromFlag(opts.defenderTech)
		if err != nil {
			return nil, fmt.Errorf("--defender-tech: %w", err)
		}
		s.Defender.Tech = tech
	}
	if flags.Changed("trials") || s.Trials == 0 {
		s.Trials = opts.trials
	}
	if flags.Changed("seed") {
		s.Seed = opts.seed
	}

	if err := scenario.Validate(s); err != nil {
		return nil, err
	}
	if len(s.Attacker.Units) == 0 && len(s.Defender.Units) == 0 {
		return nil, fmt.Errorf("%w: both fleets are empty, use --attacker/--defender or --scenario", scenario.ErrInvalidScenario)
	}
	return s, nil
}

func unitsFromFlag(raw map[string]int64) (map[string]uint64, error) {
	units := make(map[string]uint64, len(raw))
	for name, count := range raw {
		if count < 0 {
			return nil, fmt.Errorf("negative count %d for %s", count, name)
		}
		kind, err := models.ParseUnitKind(name)
		if err != nil {
			return nil, err
		}
		units[kind.String()] += uint64(count)
	}
	return units, nil
}

func techFromFlag(levels []int) (models.TechLevels, error) {
	if len(levels) != 3 {
		return models.TechLevels{}, fmt.Errorf("want weapon,shield,armor, got %d values", len(levels))
	}
	tech := models.TechLevels{Weapon: levels[0], Shield: levels[1], Armor: levels[2]}
	return tech, tech.Validate()
}

func runSingle(engine *combat.Engine, attacker, defender models.Player, seed uint64, output string) error {
	if seed == 0 {
		seed = combat.RandomSeed()
	}
	result := engine.Simulate(attacker, defender, combat.NewRand(seed, 0))

	switch output {
	case "json":
		return writeJSON(newBattleOutput(result, seed))
	case "yaml":
		return writeYAML(newBattleOutput(result, seed))
	}
	printBattle(result, seed)
	return nil
}

type sideOutput struct {
	Before        map[string]uint64 `json:"before" yaml:"before"`
	After         map[string]uint64 `json:"after" yaml:"after"`
	Lost          map[string]uint64 `json:"lost" yaml:"lost"`
	LostResources models.Costs      `json:"lost_resources" yaml:"lost_resources"`
	Tech          models.TechLevels `json:"tech" yaml:"tech"`
}

type simulationOutput struct {
	Trials          int        `json:"trials" yaml:"trials"`
	Seed            uint64     `json:"seed" yaml:"seed"`
	Attacker        sideOutput `json:"attacker" yaml:"attacker"`
	Defender        sideOutput `json:"defender" yaml:"defender"`
	AttackerWinRate float64    `json:"attacker_win_rate" yaml:"attacker_win_rate"`
	DefenderWinRate float64    `json:"defender_win_rate" yaml:"defender_win_rate"`
	DrawRate        float64    `json:"draw_rate" yaml:"draw_rate"`
	MeanRounds      float64    `json:"mean_rounds" yaml:"mean_rounds"`
}

func newSideOutput(before models.Player, after models.Fleet, stats *models.StatsTable) sideOutput {
	lost := before.Fleet.Losses(after)
	return sideOutput{
		Before:        before.Fleet.Map(),
		After:         after.Map(),
		Lost:          lost.Map(),
		LostResources: lost.Cost(stats),
		Tech:          before.Tech,
	}
}

func newSimulationOutput(r *combat.Report, attacker, defender models.Player, stats *models.StatsTable) simulationOutput {
	return simulationOutput{
		Trials:          r.Trials,
		Seed:            r.Seed,
		Attacker:        newSideOutput(attacker, r.Attacker, stats),
		Defender:        newSideOutput(defender, r.Defender, stats),
		AttackerWinRate: r.WinRate(combat.AttackerWins),
		DefenderWinRate: r.WinRate(combat.DefenderWins),
		DrawRate:        r.WinRate(combat.Draw),
		MeanRounds:      r.MeanRounds,
	}
}

type roundOutput struct {
	Round         int               `json:"round" yaml:"round"`
	Attacker      map[string]uint64 `json:"attacker" yaml:"attacker"`
	Defender      map[string]uint64 `json:"defender" yaml:"defender"`
	AttackerShots uint64            `json:"attacker_shots" yaml:"attacker_shots"`
	DefenderShots uint64            `json:"defender_shots" yaml:"defender_shots"`
}

type battleOutput struct {
	Seed    uint64        `json:"seed" yaml:"seed"`
	Outcome string        `json:"outcome" yaml:"outcome"`
	Rounds  []roundOutput `json:"rounds" yaml:"rounds"`
}

func newBattleOutput(result combat.BattleResult, seed uint64) battleOutput {
	out := battleOutput{Seed: seed, Outcome: result.Outcome.String()}
	for _, h := range result.History {
		out.Rounds = append(out.Rounds, roundOutput{
			Round:         h.Round,
			Attacker:      h.Attacker.Map(),
			Defender:      h.Defender.Map(),
			AttackerShots: h.AttackerShots,
			DefenderShots: h.DefenderShots,
		})
	}
	return out
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
