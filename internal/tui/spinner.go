package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// workDoneMsg tells the spinner that the background work has finished.
type workDoneMsg struct{ err error }

// spinnerModel shows a spinner with a label and the elapsed time until the
// work it tracks completes.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	start   time.Time
	now     func() time.Time
	done    bool
	err     error
}

func newSpinnerModel(label string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = stageStyle
	return spinnerModel{spinner: sp, label: label, start: time.Now(), now: time.Now}
}

// Init implements tea.Model.
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	elapsed := m.now().Sub(m.start).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.label, mutedStyle.Render("("+elapsed.String()+")"))
}

// RunWithSpinner runs work while a spinner labelled label animates on out.
// It returns work's error once work has returned. Cancelling ctx stops the
// spinner and is passed on to work.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, work func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	errc := make(chan error, 1)
	go func() {
		err := work(ctx)
		errc <- err
		p.Send(workDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		// The display failed; keep waiting for the work itself.
		fmt.Fprintf(out, "%s %s\n", label, mutedStyle.Render("(spinner unavailable)"))
	}
	return <-errc
}
