package installer

import (
	"path/filepath"

	"github.com/sandevgo/tuskmem/internal/config"
)

type InstallState struct {
	RuntimePath string
	Config      config.AppConfig
	Overwrite   bool
}

// NewInstallState starts from the built-in defaults.
func NewInstallState(runtimePath string) *InstallState {
	cfg, err := config.ParseAppConfig(map[string]string{})
	if err != nil {
		// defaults are static and always valid
		panic(err)
	}
	return &InstallState{
		RuntimePath: runtimePath,
		Config:      *cfg,
	}
}

func (s *InstallState) EnvPath() string {
	return filepath.Join(s.RuntimePath, ".env")
}
