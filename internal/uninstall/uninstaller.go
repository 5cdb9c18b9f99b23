// Package uninstall drives the removal of a target profile: stop services,
// remove the configured packages, run the dependency cleanup once, then
// delete groups and residual paths. Each step is independent; a failure is
// recorded and the run continues to the end.
package uninstall

import (
	"context"

	"napclean/internal/logger"
	"napclean/internal/target"
)

// PackageManager is the package-query and package-removal surface.
type PackageManager interface {
	InstalledSet() (map[string]struct{}, error)
	Remove(name string) error
	Purge(name string) error
	Autoremove() error
}

// ServiceController stops background services before their package goes away.
type ServiceController interface {
	Stop(name string) error
	Disable(name string) error
}

// GroupManager deletes system groups left behind by removed software.
type GroupManager interface {
	Delete(name string) error
}

// PathRemover deletes residual path trees.
type PathRemover interface {
	RemoveAll(path string) error
}

// FirewallCleaner clears leftover docker firewall chains.
type FirewallCleaner interface {
	FlushDockerChains() error
}

// Recorder persists run history. Recording failures never fail the run.
type Recorder interface {
	BeginRun(ctx context.Context, profile string) (int64, error)
	RecordAction(ctx context.Context, runID int64, pkg, action, detail string) error
	FinishRun(ctx context.Context, runID int64, failed bool) error
}

// Progress renders terminal feedback while a long step is in flight.
type Progress interface {
	StartProgress(operation string)
	StopProgress(operation string)
}

// Options tune a single run.
type Options struct {
	// ForcePurge removes configuration files even when the profile does
	// not ask for purge mode.
	ForcePurge bool
	// KeepFiles skips residual path deletion.
	KeepFiles bool
}

// Uninstaller executes removal runs for one profile.
type Uninstaller struct {
	profile  *target.Profile
	packages PackageManager
	services ServiceController
	groups   GroupManager
	paths    PathRemover
	firewall FirewallCleaner
	recorder Recorder
	progress Progress
	logger   logger.Logger
}

// New wires an Uninstaller. services, groups, firewall and recorder may be
// nil when the profile does not need them.
func New(profile *target.Profile, packages PackageManager, services ServiceController,
	groups GroupManager, paths PathRemover, firewall FirewallCleaner,
	recorder Recorder, log logger.Logger) *Uninstaller {

	if log == nil {
		log = logger.NewStandardLogger()
	}

	return &Uninstaller{
		profile:  profile,
		packages: packages,
		services: services,
		groups:   groups,
		paths:    paths,
		firewall: firewall,
		recorder: recorder,
		logger:   log,
	}
}

// WithProgress attaches a progress indicator for the long-running steps.
func (u *Uninstaller) WithProgress(progress Progress) *Uninstaller {
	u.progress = progress
	return u
}

// Run performs the full sequential pass and reports the aggregate result.
// The process exit code follows Result.Failed. A cancelled context lets the
// step in flight finish, marks the run failed, and skips everything after it.
func (u *Uninstaller) Run(ctx context.Context, opts Options) *Result {
	result := &Result{Profile: u.profile.Name}

	runID := u.beginRun(ctx)

	var interrupted bool
	aborted := func() bool {
		if ctx.Err() == nil {
			return false
		}
		if !interrupted {
			interrupted = true
			u.logger.Warn("Interrupted, skipping remaining steps")
			result.fail(ctx.Err())
		}
		return true
	}

	u.stopServices(result)

	if !aborted() {
		installed, queryErr := u.queryInstalled()
		if queryErr != nil {
			u.logger.Error("Package database query failed: %v", queryErr)
			result.fail(queryErr)
		}

		purge := u.profile.Purge || opts.ForcePurge
		for _, pkg := range u.profile.Packages {
			if aborted() {
				break
			}
			outcome := u.handlePackage(pkg, StateOf(installed, queryErr, pkg), purge)
			result.Outcomes = append(result.Outcomes, outcome)
			if outcome.Action == ActionFailed {
				result.fail(outcome.Err)
			}
			u.recordOutcome(ctx, runID, outcome)
		}
	}

	if !aborted() {
		// The dependency cleanup runs exactly once, after the package loop,
		// even when nothing was removed or removals failed.
		u.startStep("Removing unused dependencies")
		err := u.packages.Autoremove()
		u.finishStep("Unused dependency cleanup done")
		if err != nil {
			u.logger.Error("Dependency cleanup failed: %v", err)
			result.fail(err)
		}
	}

	if !aborted() {
		u.deleteGroups(result)
	}

	if !aborted() && !opts.KeepFiles && u.paths != nil && len(u.profile.ResidualPaths) > 0 {
		u.startStep("Deleting residual files")
		u.deleteResidualPaths(result)
		u.finishStep("Residual file cleanup done")
	}

	if !aborted() && u.profile.FlushFirewall && u.firewall != nil {
		if err := u.firewall.FlushDockerChains(); err != nil {
			u.logger.Warn("Firewall chain cleanup failed: %v", err)
			result.fail(err)
		}
	}

	u.finishRun(ctx, runID, result.Failed)

	if result.Failed {
		u.logger.Error("Profile %s finished with failures (%d removed)", u.profile.Name, result.Removed())
	} else {
		u.logger.Info("Profile %s finished (%d removed)", u.profile.Name, result.Removed())
	}

	return result
}

// StateOf derives the per-package install state. A failed query maps every
// package to StateUnknown rather than pretending nothing is installed.
func StateOf(installed map[string]struct{}, queryErr error, pkg string) InstallState {
	if queryErr != nil {
		return StateUnknown
	}
	if _, ok := installed[pkg]; ok {
		return StateInstalled
	}
	return StateAbsent
}

func (u *Uninstaller) handlePackage(pkg string, state InstallState, purge bool) Outcome {
	outcome := Outcome{Package: pkg, State: state}

	switch state {
	case StateAbsent:
		u.logger.Info("%s not installed, skipping", pkg)
		outcome.Action = ActionSkipped
	case StateUnknown:
		u.logger.Warn("%s state unknown, skipping", pkg)
		outcome.Action = ActionSkipped
	case StateInstalled:
		u.logger.Info("Removing %s...", pkg)
		if err := u.packages.Remove(pkg); err != nil {
			u.logger.Error("Failed to remove %s: %v", pkg, err)
			outcome.Action = ActionFailed
			outcome.Err = err
			return outcome
		}
		outcome.Action = ActionRemoved

		if purge {
			if err := u.packages.Purge(pkg); err != nil {
				u.logger.Error("Failed to purge %s: %v", pkg, err)
				outcome.Action = ActionFailed
				outcome.Err = err
				return outcome
			}
			outcome.Action = ActionPurged
		}
	}

	return outcome
}

func (u *Uninstaller) queryInstalled() (map[string]struct{}, error) {
	installed, err := u.packages.InstalledSet()
	if err != nil {
		return nil, err
	}
	return installed, nil
}

func (u *Uninstaller) stopServices(result *Result) {
	if u.services == nil || len(u.profile.Services) == 0 {
		return
	}

	for _, svc := range u.profile.Services {
		u.logger.Info("Stopping service %s...", svc)
		if err := u.services.Stop(svc); err != nil {
			u.logger.Error("Failed to stop %s: %v", svc, err)
			result.fail(err)
			continue
		}
		if err := u.services.Disable(svc); err != nil {
			// Disable failure is not fatal; the unit file is about to be
			// removed with its package anyway.
			u.logger.Warn("Failed to disable %s: %v", svc, err)
		}
	}
}

func (u *Uninstaller) deleteGroups(result *Result) {
	if u.groups == nil {
		return
	}

	for _, group := range u.profile.Groups {
		u.logger.Info("Deleting group %s...", group)
		if err := u.groups.Delete(group); err != nil {
			u.logger.Error("Failed to delete group %s: %v", group, err)
			result.fail(err)
		}
	}
}

func (u *Uninstaller) deleteResidualPaths(result *Result) {
	for _, path := range u.profile.ResidualPaths {
		u.logger.Debug("Deleting %s", path)
		if err := u.paths.RemoveAll(path); err != nil {
			u.logger.Error("Failed to delete %s: %v", path, err)
			result.fail(err)
		}
	}
}

// startStep announces a long step, through the progress indicator when one
// is attached and through the logger otherwise.
func (u *Uninstaller) startStep(operation string) {
	if u.progress != nil {
		u.progress.StartProgress(operation)
		return
	}
	u.logger.Info("%s...", operation)
}

func (u *Uninstaller) finishStep(operation string) {
	if u.progress != nil {
		u.progress.StopProgress(operation)
	}
}

func (u *Uninstaller) beginRun(ctx context.Context) int64 {
	if u.recorder == nil {
		return 0
	}

	runID, err := u.recorder.BeginRun(ctx, u.profile.Name)
	if err != nil {
		u.logger.Warn("Failed to record run start: %v", err)
		return 0
	}
	return runID
}

func (u *Uninstaller) recordOutcome(ctx context.Context, runID int64, outcome Outcome) {
	if u.recorder == nil || runID == 0 {
		return
	}

	detail := outcome.State.String()
	if outcome.Err != nil {
		detail = outcome.Err.Error()
	}
	if err := u.recorder.RecordAction(ctx, runID, outcome.Package, string(outcome.Action), detail); err != nil {
		u.logger.Warn("Failed to record action for %s: %v", outcome.Package, err)
	}
}

func (u *Uninstaller) finishRun(ctx context.Context, runID int64, failed bool) {
	if u.recorder == nil || runID == 0 {
		return
	}

	if err := u.recorder.FinishRun(ctx, runID, failed); err != nil {
		u.logger.Warn("Failed to record run completion: %v", err)
	}
}
