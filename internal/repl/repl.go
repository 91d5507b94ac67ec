// Package repl is a live terminal editor: text typed in Latin script is
// converted on every keystroke.
package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/rivo/uniseg"
	"github.com/samber/lo"
)

// Converter is satisfied by *translation.Translator.
type Converter interface {
	Trace(text string, script transliteration.Script, caller string) []transliteration.Conversion
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	outputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

type Model struct {
	conv   Converter
	script transliteration.Script
	input  textarea.Model
	trace  []transliteration.Conversion
	output string
	width  int
}

func New(conv Converter, script transliteration.Script) Model {
	ta := textarea.New()
	ta.Placeholder = "Type Singlish here, e.g. mama gedhara yanavaa"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(5)
	ta.Focus()

	return Model{conv: conv, script: script, input: ta}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-2, 20))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.input.Reset()
			m.convert()
			return m, nil
		case tea.KeyTab:
			m.script = nextScript(m.script)
			m.convert()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.convert()
	}
	return m, cmd
}

func (m *Model) convert() {
	m.trace = m.conv.Trace(m.input.Value(), m.script, "repl")
	m.output = transliteration.Recompose(m.trace)
}

// Output is the conversion of the current input.
func (m Model) Output() string {
	return m.output
}

func (m Model) Script() transliteration.Script {
	return m.script
}

func nextScript(s transliteration.Script) transliteration.Script {
	i := lo.IndexOf(transliteration.Scripts, s)
	return transliteration.Scripts[(i+1)%len(transliteration.Scripts)]
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Singlish → " + m.script.String()))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	out := m.output
	if out == "" {
		out = statusStyle.Render("(output appears here)")
	}
	box := outputStyle
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	s.WriteString(box.Render(out))
	s.WriteString("\n")
	s.WriteString(m.status())
	s.WriteString("\n")
	s.WriteString(statusStyle.Render("tab: switch script • ctrl+l: clear • esc: quit"))
	s.WriteString("\n")
	return s.String()
}

func (m Model) status() string {
	words := lo.Filter(m.trace, func(c transliteration.Conversion, _ int) bool {
		return c.Token.Kind == transliteration.Word
	})
	bySource := lo.CountValuesBy(words, func(c transliteration.Conversion) transliteration.Source {
		return c.Result.Source
	})

	line := statusStyle.Render(fmt.Sprintf("%d graphemes • %d words (%d dictionary, %d rules)",
		uniseg.GraphemeClusterCount(m.output),
		len(words),
		bySource[transliteration.SourceDictionary],
		bySource[transliteration.SourceRules],
	))
	if n := bySource[transliteration.SourcePartial]; n > 0 {
		line += " " + partialStyle.Render(fmt.Sprintf("%d partial", n))
	}
	return line
}

// Run starts the editor on the terminal.
func Run(conv Converter, script transliteration.Script) error {
	_, err := tea.NewProgram(New(conv, script), tea.WithAltScreen()).Run()
	return err
}
