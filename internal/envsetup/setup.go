// envsetup provides a lightweight .env configuration wizard.
// It runs automatically on first bot startup when no .env file exists,
// collecting the Discord credentials and the database location.
package envsetup

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/singlish/internal/db"
)

const (
	envFile           = ".env"
	defaultDatabase   = "./singlish.db"
	defaultRetainDays = "90"
)

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepGuild
	stepDatabase
	stepConfirm
	stepDone
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	step         step
	discordToken string
	guildID      string
	databaseURL  string
	input        string
	err          error
	path         string
}

func New() model {
	return newModel(envFile)
}

func newModel(path string) model {
	return model{step: stepWelcome, path: path}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		return m.handleEnter()

	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}

	case tea.KeyRunes:
		m.input += string(key.Runes)

	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.input)

	switch m.step {
	case stepWelcome:
		m.step = stepDiscord

	case stepDiscord:
		if value == "" {
			m.err = fmt.Errorf("Discord token is required")
			return m, nil
		}
		m.discordToken = strings.TrimPrefix(value, "Bot ")
		m.step = stepGuild

	case stepGuild:
		if strings.IndexFunc(value, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			m.err = fmt.Errorf("a guild ID is a number; leave it empty to register globally")
			return m, nil
		}
		m.guildID = value
		m.step = stepDatabase

	case stepDatabase:
		if value == "" {
			value = defaultDatabase
		}
		m.databaseURL = value
		m.step = stepConfirm

	case stepConfirm:
		switch strings.ToLower(value) {
		case "y", "yes", "":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.step = stepDone
			return m, tea.Quit
		case "n", "no":
			return newModel(m.path), nil
		default:
			m.err = fmt.Errorf("please answer y or n")
			return m, nil
		}
	}

	m.input = ""
	return m, nil
}

func (m model) envContent() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DATABASE_URL=%s\n", m.databaseURL)
	fmt.Fprintf(&b, "DISCORD_TOKEN=%s\n", m.discordToken)
	if m.guildID != "" {
		fmt.Fprintf(&b, "DISCORD_GUILD_ID=%s\n", m.guildID)
	}
	fmt.Fprintf(&b, "FEEDBACK_RETENTION_DAYS=%s\n", defaultRetainDays)
	return b.String()
}

func (m model) writeEnvFile() error {
	return os.WriteFile(m.path, []byte(m.envContent()), 0600)
}

func (m model) databaseKind() string {
	if db.IsPostgresURL(m.databaseURL) {
		return "PostgreSQL"
	}
	return "SQLite"
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Singlish Bot - Env Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the bot.\n")
		s.WriteString("You'll need:\n\n")
		s.WriteString("  - A Discord bot token\n")
		s.WriteString("  - Optionally, a test server (guild) ID for instant command updates\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("To get your Discord bot token:\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. Go to the Bot section\n")
		s.WriteString("  4. Click 'Reset Token' to get your bot token\n")
		s.WriteString("  5. Invite the bot with the applications.commands scope\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(maskToken(m.input)))

	case stepGuild:
		s.WriteString(titleStyle.Render("Step 2: Test Server (optional)"))
		s.WriteString("\n\n")
		s.WriteString("Global commands can take up to an hour to appear.\n")
		s.WriteString("Registering to one server is instant. Enable Developer Mode in Discord,\n")
		s.WriteString("then right-click your server and choose 'Copy Server ID'.\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Server ID (Enter to skip):"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 3: Database"))
		s.WriteString("\n\n")
		s.WriteString("Custom words and feedback are stored in a database.\n")
		s.WriteString("Use a file path for SQLite or a postgres:// URL.\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render(fmt.Sprintf("Database (Enter for %s):", defaultDatabase)))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepConfirm:
		guild := m.guildID
		if guild == "" {
			guild = "(global)"
		}
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("Your configuration:\n\n")
		s.WriteString("  Database:  " + successStyle.Render(m.databaseURL) + dimStyle.Render(" ("+m.databaseKind()+")") + "\n")
		s.WriteString("  Discord:   " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		s.WriteString("  Server:    " + successStyle.Render(guild) + "\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepDone:
		s.WriteString(successStyle.Render("Saved " + m.path))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and returns true if setup was completed successfully
func Run() (bool, error) {
	p := tea.NewProgram(New())
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(model)
	return m.step == stepDone, nil
}

// NeedsSetup checks if .env file exists
func NeedsSetup() bool {
	_, err := os.Stat(envFile)
	return os.IsNotExist(err)
}
