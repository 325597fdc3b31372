package installer

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskmem/pkg/env"
)

// SaveEnvStep writes the collected configuration to the runtime .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := SaveEnv(state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// SaveEnv validates the collected config and writes it as .env. An existing
// file is kept unless the state asks to overwrite it.
func SaveEnv(state *InstallState) error {
	if err := state.Config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(state.RuntimePath, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := state.EnvPath()
	if _, err := os.Stat(envPath); err == nil && !state.Overwrite {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	cfg := state.Config
	// the runtime path is found through the environment, not the file
	cfg.RuntimePath = ""
	content, err := env.MarshalEnv(&cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(envPath, []byte(content), 0o600)
}
