package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskmem/internal/config"
)

// DriverStep selects the persistent store
type DriverStep struct {
	choices []string
	cursor  int
}

func NewDriverStep() Step {
	return &DriverStep{
		choices: []string{config.DriverSQLite, config.DriverPostgres, config.DriverMongo},
	}
}

func (s *DriverStep) Init() tea.Cmd {
	return nil
}

func (s *DriverStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.Config.StoreDriver = s.choices[s.cursor]
			return nil, nil
		}
	}
	return s, nil
}

func (s *DriverStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the persistent store:\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", choice)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
