package installer

import (
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskmem/internal/config"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	tick  = nextMsg{}
)

func typed(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drive(m tea.Model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(model)
}

func TestWizard_Postgres(t *testing.T) {
	state := NewInstallState(t.TempDir())
	m := drive(newModel(state, getSteps()),
		down, enter, // postgres
		typed("postgres://localhost/tuskmem"), enter,
		enter, // no redis
		tick,  // password step skips itself
		typed("30"), enter,
		tick, // save
	)

	require.Equal(t, len(m.steps), m.currentStep, m.View())

	data, err := os.ReadFile(state.EnvPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "STORE_DRIVER=postgres\n")
	assert.Contains(t, content, "POSTGRES_DSN=postgres://localhost/tuskmem\n")
	assert.Contains(t, content, "COMPACTION_THRESHOLD=30\n")
	assert.Contains(t, content, "PROCESS_CACHE_TTL=5m0s\n")
	assert.NotContains(t, content, "REDIS_ADDR")
	assert.NotContains(t, content, "TUSKMEM_RUNTIME_PATH")

	environ, err := godotenv.Unmarshal(content)
	require.NoError(t, err)
	cfg, err := config.ParseAppConfig(environ)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.CompactionThreshold)
}

func TestWizard_RedisPassword(t *testing.T) {
	state := NewInstallState(t.TempDir())
	m := drive(newModel(state, getSteps()),
		enter, // sqlite
		enter, // default path
		typed("localhost:6379"), enter,
		typed("secret"), enter,
		enter, // default threshold
		tick,
	)

	require.Equal(t, len(m.steps), m.currentStep, m.View())
	assert.Equal(t, "secret", state.Config.RedisPassword)
	assert.Equal(t, 20, state.Config.CompactionThreshold)
}

func TestWizard_RejectsInvalidInput(t *testing.T) {
	state := NewInstallState(t.TempDir())
	m := drive(newModel(state, getSteps()),
		down, down, enter, // mongo
		enter, // empty uri
	)
	assert.Equal(t, 1, m.currentStep)
	assert.Contains(t, m.View(), "MONGO_URI")

	m = drive(m, typed("mongodb://localhost"), enter, enter, tick, typed("many"), enter)
	assert.Equal(t, 4, m.currentStep)
	assert.Contains(t, m.View(), "not a positive number")
}

func TestWizard_CtrlC(t *testing.T) {
	m := drive(newModel(NewInstallState(t.TempDir()), getSteps()), tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.quitting)
}

func TestSaveEnv_KeepsExisting(t *testing.T) {
	state := NewInstallState(t.TempDir())
	require.NoError(t, SaveEnv(state))
	assert.Error(t, SaveEnv(state))

	state.Overwrite = true
	assert.NoError(t, SaveEnv(state))
}
