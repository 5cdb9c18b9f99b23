package system

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Config captures runtime characteristics and directories used by napclean.
type Config struct {
	Architecture string `json:"architecture"`
	VirtType     string `json:"virt_type"`
	WorkingDir   string `json:"working_dir"`
}

// LoadConfig builds a Config populated with detected system attributes.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		WorkingDir: "/var/lib/napclean",
	}

	arch, err := detectArchitecture()
	if err != nil {
		return nil, errors.Wrap(err, "architecture detection failed")
	}
	cfg.Architecture = arch

	virtType, err := detectVirtualization()
	if err != nil {
		return nil, errors.Wrap(err, "virtualization detection failed")
	}
	cfg.VirtType = virtType

	return cfg, nil
}

// Validate ensures the working directory exists and required commands are present.
func (c *Config) Validate() error {
	if err := os.MkdirAll(c.WorkingDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create working directory %s", c.WorkingDir)
	}

	requiredCommands := []string{"apt-get", "dpkg-query", "systemctl"}
	for _, cmd := range requiredCommands {
		if _, err := exec.LookPath(cmd); err != nil {
			return errors.Errorf("missing required system command: %s", cmd)
		}
	}

	return nil
}

// IsRoot reports whether the process runs with root privileges.
// Every mutating package manager call needs them.
func IsRoot() bool {
	return unix.Geteuid() == 0
}

// IsContainer reports whether the environment is containerized.
func (c *Config) IsContainer() bool {
	return c.VirtType == "container"
}

// JournalPath returns the sqlite journal location inside the working directory.
func (c *Config) JournalPath() string {
	return filepath.Join(c.WorkingDir, "history.db")
}
