package envsetup

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m model, text string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(model)
}

func enter(m model) (model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestWizardWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	m := newModel(path)

	m, _ = enter(m)
	require.Equal(t, stepDiscord, m.step)

	m = typeText(m, "Bot abcdefghijklmnop")
	m, _ = enter(m)
	require.Equal(t, stepGuild, m.step)
	assert.Equal(t, "abcdefghijklmnop", m.discordToken)

	m = typeText(m, "123456789")
	m, _ = enter(m)
	require.Equal(t, stepDatabase, m.step)

	m, _ = enter(m)
	require.Equal(t, stepConfirm, m.step)
	assert.Equal(t, defaultDatabase, m.databaseURL)
	assert.Contains(t, m.View(), "SQLite")

	m, cmd := enter(m)
	require.NoError(t, m.err)
	assert.Equal(t, stepDone, m.step)
	assert.NotNil(t, cmd)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DATABASE_URL=./singlish.db\nDISCORD_TOKEN=abcdefghijklmnop\nDISCORD_GUILD_ID=123456789\nFEEDBACK_RETENTION_DAYS=90\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWizardValidation(t *testing.T) {
	m := newModel(filepath.Join(t.TempDir(), ".env"))
	m, _ = enter(m)

	m, _ = enter(m)
	assert.Equal(t, stepDiscord, m.step)
	assert.Error(t, m.err, "token is required")

	m = typeText(m, "token-value-long")
	m, _ = enter(m)
	m = typeText(m, "my-server")
	m, _ = enter(m)
	assert.Equal(t, stepGuild, m.step)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "guild ID is a number")
}

func TestWizardDeclineRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	m := newModel(path)
	m, _ = enter(m)
	m = typeText(m, "token-value-long")
	m, _ = enter(m)
	m, _ = enter(m)
	m = typeText(m, "postgres://u:p@localhost/singlish")
	m, _ = enter(m)
	assert.Contains(t, m.View(), "PostgreSQL")

	m = typeText(m, "n")
	m, _ = enter(m)
	assert.Equal(t, stepWelcome, m.step)
	assert.Empty(t, m.discordToken)
	assert.NoFileExists(t, path)
}

func TestBackspaceRemovesRune(t *testing.T) {
	m := typeText(newModel(""), "ගෙදර")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ගෙද", next.(model).input)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd****mnop", maskToken("abcdefghijklmnop"))
}
