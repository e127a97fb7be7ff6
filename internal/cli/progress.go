package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/pkg/compose"
)

// progressModel drives a spinner while Compose runs in the background, in
// the idiom of the teacher's scannerModel.
type progressModel struct {
	spinner spinner.Model
	label   string
	done    bool
	result  domain.Result[compose.Result]
}

type composeDoneMsg struct {
	result domain.Result[compose.Result]
}

func newProgressModel(label string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return progressModel{spinner: s, label: label}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case composeDoneMsg:
		m.done = true
		m.result = msg.result
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("\n %s %s\n\n", m.spinner.View(), m.label)
}

// runWithProgress runs fn in the background, showing a spinner attached to a
// terminal and falling back to a single log line otherwise, matching
// SPEC_FULL.md §4.7's CLI progress rendering.
func runWithProgress(ctx context.Context, logger compose.Logger, label string, fn func(context.Context) domain.Result[compose.Result]) domain.Result[compose.Result] {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Info(ctx, label)
		return fn(ctx)
	}

	m := newProgressModel(label)
	p := tea.NewProgram(m)

	go func() {
		res := fn(ctx)
		p.Send(composeDoneMsg{result: res})
	}()

	final, err := p.Run()
	if err != nil {
		return fn(ctx)
	}
	return final.(progressModel).result
}

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// renderSummary styles the final plan/diagnostics summary with lipgloss,
// per SPEC_FULL.md §4.7.
func renderSummary(r compose.Result) string {
	var out string
	out += styleHeading.Render(fmt.Sprintf("composed %d files", r.FilesWritten)) + "\n"
	if len(r.Warnings) == 0 {
		out += styleOK.Render("no warnings") + "\n"
		return out
	}
	out += styleWarn.Render(fmt.Sprintf("%d warning(s):", len(r.Warnings))) + "\n"
	for _, w := range r.Warnings {
		out += styleDim.Render("  - "+w) + "\n"
	}
	return out
}
