package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/models"
)

const progressWidth = 40

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// errInterrupted is returned when the user quits the progress view
var errInterrupted = errors.New("simulation interrupted")

type progressMsg int

type doneMsg struct{}

// progressModel is a bubbletea model showing finished trials
type progressModel struct {
	done, total int
	finished    bool
	canceled    bool
}

func newProgressModel(total int) progressModel {
	return progressModel{total: total}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if int(msg) > m.done {
			m.done = int(msg)
		}
	case doneMsg:
		m.done = m.total
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
	}
	filled := int(ratio * progressWidth)
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		trackStyle.Render(strings.Repeat("░", progressWidth-filled))

	view := fmt.Sprintf("%s %s %3.0f%% (%d/%d)\n", labelStyle.Render("Simulating"), bar, ratio*100, m.done, m.total)
	if m.finished {
		view += "\n"
	}
	return view
}

// progressStep limits redraw messages to about 200 per run
func progressStep(trials int) int {
	if step := trials / 200; step > 1 {
		return step
	}
	return 1
}

// runWithProgress runs the averager in the background while a bubbletea
// program renders its progress on stderr. Quitting the view with ctrl+c
// stops the remaining trials and returns errInterrupted.
func runWithProgress(engine *combat.Engine, opts []combat.AveragerOption, attacker, defender models.Player, trials int) (*combat.Report, error) {
	p := tea.NewProgram(newProgressModel(trials), tea.WithOutput(os.Stderr))

	step := progressStep(trials)
	opts = append(opts, combat.WithProgress(func(done int) {
		if done%step == 0 || done == trials {
			p.Send(progressMsg(done))
		}
	}))

	type result struct {
		report *combat.Report
		err    error
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan result, 1)
	go func() {
		report, err := combat.NewAverager(engine, opts...).RunContext(ctx, attacker, defender, trials)
		results <- result{report, err}
		p.Send(doneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-results
		return nil, fmt.Errorf("progress view: %w", err)
	}
	if m, ok := final.(progressModel); ok && m.canceled {
		cancel()
		<-results
		return nil, errInterrupted
	}
	res := <-results
	return res.report, res.err
}
