package target

import (
	"embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "napclean/internal/errors"
)

// Profile describes one removal target set. The lists are fixed for a run;
// nothing mutates a Profile after loading.
type Profile struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Packages      []string `yaml:"packages"`
	Purge         bool     `yaml:"purge"`
	Services      []string `yaml:"services"`
	Groups        []string `yaml:"groups"`
	ResidualPaths []string `yaml:"residual_paths"`
	FlushFirewall bool     `yaml:"flush_firewall"`
}

// Config is the set of profiles available to the uninstaller.
type Config struct {
	Profiles []Profile `yaml:"profiles"`
}

//go:embed base-targets.yaml
var embeddedBaseTargets embed.FS

// BaseConfig returns the embedded default target configuration.
func BaseConfig() (*Config, error) {
	data, err := embeddedBaseTargets.ReadFile("base-targets.yaml")
	if err != nil {
		return nil, configError("target.baseConfig", "failed to read embedded targets", err, nil)
	}
	return decodeConfig(data)
}

// LoadConfig returns the embedded defaults merged with an optional override
// file. Override profiles replace embedded profiles with the same name and
// append otherwise.
func LoadConfig(overridePath string) (*Config, error) {
	cfg, err := BaseConfig()
	if err != nil {
		return nil, err
	}

	if overridePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, configError("target.loadConfig", "failed to read targets file", err, apperrors.Metadata{
			"path": overridePath,
		})
	}

	override, err := decodeConfig(data)
	if err != nil {
		return nil, err
	}

	cfg.merge(override)
	return cfg, nil
}

// Profile looks up a profile by name.
func (c *Config) Profile(name string) (*Profile, bool) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], true
		}
	}
	return nil, false
}

// Names lists the configured profile names in declaration order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

func (c *Config) merge(override *Config) {
	for _, p := range override.Profiles {
		if existing, ok := c.Profile(p.Name); ok {
			*existing = p
			continue
		}
		c.Profiles = append(c.Profiles, p)
	}
}

func decodeConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError("target.decodeConfig", "failed to parse targets yaml", err, nil)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Profiles) == 0 {
		return configError("target.validate", "no profiles configured", nil, nil)
	}

	seen := make(map[string]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return configError("target.validate", "profile name is required", nil, nil)
		}
		if _, dup := seen[name]; dup {
			return configError("target.validate", "duplicate profile name", nil, apperrors.Metadata{
				"profile": name,
			})
		}
		seen[name] = struct{}{}

		if len(p.Packages) == 0 {
			return configError("target.validate", "profile has no packages", nil, apperrors.Metadata{
				"profile": name,
			})
		}
		for _, pkg := range p.Packages {
			if strings.TrimSpace(pkg) == "" {
				return configError("target.validate", "empty package entry", nil, apperrors.Metadata{
					"profile": name,
				})
			}
		}
	}
	return nil
}

func configError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.ConfigError(apperrors.CodeConfigGeneric, message, err).
		WithModule("target").
		WithOperation(operation).
		WithFields(metadata)
}
