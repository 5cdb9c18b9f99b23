package service

import (
	"os/exec"
	"strings"

	apperrors "napclean/internal/errors"
)

// Runner abstracts command execution so controllers can be tested without systemd.
type Runner interface {
	Run(name string, args ...string) error
	Output(name string, args ...string) ([]byte, error)
}

// SystemRunner executes commands on the local OS.
type SystemRunner struct{}

func (SystemRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (SystemRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Controller drives systemd units via systemctl.
type Controller struct {
	run Runner
}

// NewController constructs a Controller (defaults to SystemRunner).
func NewController(run Runner) *Controller {
	if run == nil {
		run = SystemRunner{}
	}
	return &Controller{run: run}
}

// IsActive reports whether the named unit is currently active.
func (c *Controller) IsActive(name string) bool {
	output, err := c.run.Output("systemctl", "is-active", name)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == "active"
}

// Stop stops the named unit. Stopping an inactive unit is not an error.
func (c *Controller) Stop(name string) error {
	if !c.IsActive(name) {
		return nil
	}
	if err := c.run.Run("systemctl", "stop", name); err != nil {
		return serviceError("service.stop", "failed to stop service", err, apperrors.Metadata{
			"service": name,
		})
	}
	return nil
}

// Disable removes the named unit from the boot sequence.
func (c *Controller) Disable(name string) error {
	if err := c.run.Run("systemctl", "disable", name); err != nil {
		return serviceError("service.disable", "failed to disable service", err, apperrors.Metadata{
			"service": name,
		})
	}
	return nil
}

func serviceError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.ServiceError(apperrors.CodeServiceGeneric, message, err).
		WithModule("service").
		WithOperation(operation).
		WithFields(metadata)
}
