package pkgmgr

import (
	"strings"

	apperrors "napclean/internal/errors"
)

// Manager wraps the Debian package removal surface (dpkg-query/apt-get).
type Manager struct {
	exec Executor
}

// NewManager constructs a Manager with the provided executor (defaults to SystemExecutor).
func NewManager(exec Executor) *Manager {
	if exec == nil {
		exec = SystemExecutor{}
	}
	return &Manager{exec: exec}
}

// InstalledSet lists every installed package once. Entries that only
// survive in the dpkg database as leftover configuration (state rc after a
// remove without purge) are excluded, so a finished removal reads as not
// installed. Arch-qualified names (e.g. libasound2:amd64) are indexed both
// qualified and bare, so target lists may use either form.
func (m *Manager) InstalledSet() (map[string]struct{}, error) {
	output, err := m.exec.Output("dpkg-query", "-W", "-f=${binary:Package} ${db:Status-Status}\n")
	if err != nil {
		return nil, dpkgError("pkgmgr.installedSet", "dpkg-query failed", err, apperrors.Metadata{
			"command": "dpkg-query -W",
		})
	}

	result := make(map[string]struct{})
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[1] != "installed" {
			continue
		}
		pkg := fields[0]
		result[pkg] = struct{}{}
		if idx := strings.Index(pkg, ":"); idx > 0 {
			result[pkg[:idx]] = struct{}{}
		}
	}
	return result, nil
}

// Remove uninstalls a single package, leaving its configuration in place.
func (m *Manager) Remove(name string) error {
	if err := m.exec.Run("apt-get", "remove", "-y", name); err != nil {
		return dpkgError("pkgmgr.remove", "apt-get remove failed", err, apperrors.Metadata{
			"package": name,
		})
	}
	return nil
}

// Purge uninstalls a package together with its configuration files.
func (m *Manager) Purge(name string) error {
	if err := m.exec.Run("apt-get", "purge", "-y", name); err != nil {
		return dpkgError("pkgmgr.purge", "apt-get purge failed", err, apperrors.Metadata{
			"package": name,
		})
	}
	return nil
}

// Autoremove deletes packages that were installed as dependencies and are
// no longer required by anything installed.
func (m *Manager) Autoremove() error {
	if err := m.exec.Run("apt-get", "autoremove", "-y"); err != nil {
		return dpkgError("pkgmgr.autoremove", "apt-get autoremove failed", err, nil)
	}
	return nil
}

func dpkgError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.DependencyError(apperrors.CodeDependencyGeneric, message, err).
		WithModule("pkgmgr").
		WithOperation(operation).
		WithFields(metadata)
}
