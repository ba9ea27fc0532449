package form

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user abandons the form.
var ErrCancelled = errors.New("form cancelled")

// Field describes one input line. Secret fields echo as dots.
type Field struct {
	Key    string
	Label  string
	Secret bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Run renders a small sequential form and returns the entered values keyed by
// field key.
func Run(title string, fields []Field, in io.Reader, out io.Writer) (map[string]string, error) {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = f.Label
		ti.CharLimit = 256
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		inputs[i] = ti
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	m := formModel{title: title, fields: fields, inputs: inputs}
	prog := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("running form: %w", err)
	}

	fm := final.(formModel)
	if fm.cancelled {
		return nil, ErrCancelled
	}

	values := make(map[string]string, len(fields))
	for i, f := range fields {
		values[f.Key] = fm.inputs[i].Value()
	}
	return values, nil
}

type formModel struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	focused   int
	cancelled bool
	done      bool
}

func (m formModel) Init() tea.Cmd { return textinput.Blink }

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case "enter", "tab", "down":
			if key.String() == "enter" && m.focused == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.inputs[m.focused].Blur()
			m.focused = (m.focused + 1) % len(m.inputs)
			return m, m.inputs[m.focused].Focus()
		case "shift+tab", "up":
			m.inputs[m.focused].Blur()
			m.focused = (m.focused - 1 + len(m.inputs)) % len(m.inputs)
			return m, m.inputs[m.focused].Focus()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m formModel) View() string {
	if m.done {
		return ""
	}

	view := titleStyle.Render(m.title) + "\n\n"
	for i, f := range m.fields {
		view += labelStyle.Render(f.Label) + "\n"
		view += m.inputs[i].View() + "\n"
	}
	view += "\n" + hintStyle.Render("enter: next/submit  esc: cancel") + "\n"
	return view
}
