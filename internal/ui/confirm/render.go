package confirm

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stratus/internal/ui/prompt"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	extraStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

func styleFor(kind Kind) (lipgloss.Style, string) {
	switch kind {
	case KindSuccess:
		return successStyle, "OK"
	case KindWarning:
		return warningStyle, "WARN"
	case KindInfo:
		return infoStyle, "INFO"
	case KindConfirm:
		return confirmStyle, "?"
	default:
		return errorStyle, "ERROR"
	}
}

// Presenter drains the shared Dialog onto a terminal. Notification kinds
// render as a single styled line and auto-dismiss; confirm kinds run an
// interactive yes/no prompt before driving the Confirm/Cancel transition.
type Presenter struct {
	dialog      *Dialog
	in          io.Reader
	out         io.Writer
	interactive bool
	assumeYes   bool
}

func NewPresenter(dialog *Dialog, in io.Reader, out io.Writer, interactive bool) *Presenter {
	return &Presenter{dialog: dialog, in: in, out: out, interactive: interactive}
}

// AssumeYes makes confirm requests resolve without prompting, for --force.
func (p *Presenter) AssumeYes(yes bool) { p.assumeYes = yes }

// Flush presents whatever request is open and settles the dialog back to
// Closed. A closed dialog is a no-op.
func (p *Presenter) Flush() error {
	req, open := p.dialog.Current()
	if !open {
		return nil
	}

	if req.Kind != KindConfirm {
		style, label := styleFor(req.Kind)
		fmt.Fprintln(p.out, style.Render("["+label+"]")+" "+req.Message)
		if req.Extra != "" {
			fmt.Fprintln(p.out, extraStyle.Render(indent(req.Extra)))
		}
		p.dialog.Cancel()
		return nil
	}

	accepted, err := p.ask(req)
	if err != nil {
		p.dialog.Cancel()
		return err
	}
	if accepted {
		p.dialog.Confirm()
	} else {
		p.dialog.Cancel()
	}
	return nil
}

func (p *Presenter) ask(req Request) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !p.interactive {
		// No terminal to run the full-screen prompt on; fall back to a plain
		// line-oriented confirmation.
		return prompt.NewStandardPrompter(p.in, p.out).Confirm(req.Message)
	}

	m := confirmModel{req: req}
	prog := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := prog.Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation prompt: %w", err)
	}
	return final.(confirmModel).accepted, nil
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

// confirmModel is the bubbletea model behind the interactive yes/no prompt.
type confirmModel struct {
	req      Request
	accepted bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		m.accepted = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "esc", "q", "ctrl+c":
		m.accepted = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	style, label := styleFor(KindConfirm)
	view := style.Render("["+label+"]") + " " + m.req.Message + "\n"
	if m.req.Extra != "" {
		view += extraStyle.Render(indent(m.req.Extra)) + "\n"
	}
	view += promptStyle.Render("y: confirm  n/esc: cancel") + "\n"
	return view
}
