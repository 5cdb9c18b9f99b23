package service

import (
	"os/user"

	apperrors "napclean/internal/errors"
)

// GroupManager deletes system groups left behind by removed software
// (the docker install creates a docker group that apt never cleans up).
type GroupManager struct {
	run Runner
}

// NewGroupManager constructs a GroupManager (defaults to SystemRunner).
func NewGroupManager(run Runner) *GroupManager {
	if run == nil {
		run = SystemRunner{}
	}
	return &GroupManager{run: run}
}

// Delete removes the named system group. A missing group is not an error.
func (g *GroupManager) Delete(name string) error {
	if _, err := user.LookupGroup(name); err != nil {
		return nil
	}

	if err := g.run.Run("groupdel", name); err != nil {
		return apperrors.ServiceError(apperrors.CodeServiceGeneric, "failed to delete group", err).
			WithModule("service").
			WithOperation("service.deleteGroup").
			WithField("group", name)
	}
	return nil
}
