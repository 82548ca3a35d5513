package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/models"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 2)

func printBanner(subtitle string) {
	fmt.Println(bannerStyle.Render("OGame Fleet Simulator\n" + subtitle))
	fmt.Println()
}

func printFleets(attacker, defender models.Player) {
	infoColor := color.New(color.FgYellow)

	infoColor.Println("⚔️  Attacker:")
	fmt.Printf("   Fleet: %s\n", attacker.Fleet)
	fmt.Printf("   Tech:  weapon %d, shield %d, armor %d\n", attacker.Tech.Weapon, attacker.Tech.Shield, attacker.Tech.Armor)
	infoColor.Println("🛡️  Defender:")
	fmt.Printf("   Fleet: %s\n", defender.Fleet)
	fmt.Printf("   Tech:  weapon %d, shield %d, armor %d\n", defender.Tech.Weapon, defender.Tech.Shield, defender.Tech.Armor)
	fmt.Println()
}

func printReport(r *combat.Report, attacker, defender models.Player, stats *models.StatsTable) {
	fmt.Println("📦 Attacker survivors (rounded mean):")
	printSide(attacker.Fleet, r.Attacker, stats)
	fmt.Println("\n📦 Defender survivors (rounded mean):")
	printSide(defender.Fleet, r.Defender, stats)

	fmt.Println("\n📊 Outcome:")
	fmt.Printf("   Attacker wins: %5.1f%%\n", 100*r.WinRate(combat.AttackerWins))
	fmt.Printf("   Defender wins: %5.1f%%\n", 100*r.WinRate(combat.DefenderWins))
	fmt.Printf("   Draws:         %5.1f%%\n", 100*r.WinRate(combat.Draw))
	fmt.Printf("   Mean rounds:   %.2f\n", r.MeanRounds)
}

// printSide renders before/after/lost per kind plus the resource value lost
func printSide(before, after models.Fleet, stats *models.StatsTable) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Unit", "Before", "After", "Lost", "Metal Lost", "Crystal Lost", "Deut Lost"}),
	)

	lost := before.Losses(after)
	before.Each(func(k models.UnitKind, n uint64) {
		unitLost := models.NewFleet(map[models.UnitKind]uint64{k: lost.Get(k)})
		cost := unitLost.Cost(stats)
		table.Append([]string{
			k.String(),
			fmt.Sprintf("%d", n),
			fmt.Sprintf("%d", after.Get(k)),
			fmt.Sprintf("%d", lost.Get(k)),
			fmt.Sprintf("%.0f", cost.Metal),
			fmt.Sprintf("%.0f", cost.Crystal),
			fmt.Sprintf("%.0f", cost.Deuterium),
		})
	})
	table.Render()

	total := lost.Cost(stats)
	fmt.Printf("   Total lost: %.0f resources (%.0f metal, %.0f crystal, %.0f deuterium)\n",
		total.Total(), total.Metal, total.Crystal, total.Deuterium)
}

func printBattle(result combat.BattleResult, seed uint64) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Round", "Attacker", "Defender", "Attacker Shots", "Defender Shots"}),
	)
	for _, h := range result.History {
		table.Append([]string{
			fmt.Sprintf("%d", h.Round),
			h.Attacker.String(),
			h.Defender.String(),
			fmt.Sprintf("%d", h.AttackerShots),
			fmt.Sprintf("%d", h.DefenderShots),
		})
	}
	table.Render()

	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Printf("\n✓ %s after %d rounds (seed %d)\n", result.Outcome, result.Rounds, seed)
}

func newUnitsCmd() *cobra.Command {
	var defensesOnly, shipsOnly bool

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List unit stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, data, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if !quiet {
				printBanner("Unit Stats")
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"#", "Unit", "Attack", "Shield", "Hull", "Metal", "Crystal", "Deut", "Speed", "Cargo"}),
			)
			for _, k := range models.AllUnitKinds() {
				if (defensesOnly && !k.IsDefense()) || (shipsOnly && k.IsDefense()) {
					continue
				}
				s := data.Stats().Get(k)
				table.Append([]string{
					fmt.Sprintf("%d", int(k)),
					k.String(),
					fmt.Sprintf("%.0f", s.Attack),
					fmt.Sprintf("%.0f", s.Shield),
					fmt.Sprintf("%.0f", s.Hull),
					fmt.Sprintf("%.0f", s.Cost.Metal),
					fmt.Sprintf("%.0f", s.Cost.Crystal),
					fmt.Sprintf("%.0f", s.Cost.Deuterium),
					fmt.Sprintf("%.0f", s.Speed),
					fmt.Sprintf("%.0f", s.Cargo),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&defensesOnly, "defenses", false, "Only list defenses")
	cmd.Flags().BoolVar(&shipsOnly, "ships", false, "Only list ships")
	cmd.MarkFlagsMutuallyExclusive("defenses", "ships")
	return cmd
}

func newRapidFireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rapidfire [unit]",
		Short: "Show rapid fire rules, for one shooter or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, data, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			shooters := models.AllUnitKinds()
			if len(args) == 1 {
				k, err := models.ParseUnitKind(args[0])
				if err != nil {
					return err
				}
				shooters = []models.UnitKind{k}
			}

			if !quiet {
				printBanner("Rapid Fire")
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Shooter", "Target", "Shots", "Continue Chance"}),
			)
			rows := 0
			for _, shooter := range shooters {
				for _, target := range models.AllUnitKinds() {
					rf := data.RapidFire(shooter, target)
					if rf <= 1 {
						continue
					}
					table.Append([]string{
						shooter.String(),
						target.String(),
						fmt.Sprintf("%d", rf),
						fmt.Sprintf("%.2f%%", 100*float64(rf-1)/float64(rf)),
					})
					rows++
				}
			}
			if rows == 0 {
				color.Yellow("No rapid fire rules for %s", shooters[0])
				return nil
			}
			table.Render()
			return nil
		},
	}
}
