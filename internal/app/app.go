// Package app wires the napclean collaborators and exposes the command tree.
package app

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"napclean/internal/firewall"
	"napclean/internal/journal"
	"napclean/internal/logger"
	"napclean/internal/menu"
	"napclean/internal/pkgmgr"
	"napclean/internal/residue"
	"napclean/internal/service"
	"napclean/internal/system"
	"napclean/internal/target"
	"napclean/internal/ui"
	"napclean/internal/uninstall"
)

// ErrRunFailed signals that the uninstall pass finished with failures; the
// process exit status must be non-zero even though every step was attempted.
var ErrRunFailed = errors.New("uninstall completed with failures")

// App owns the long-lived collaborators shared by all commands.
type App struct {
	sysCfg  *system.Config
	logger  logger.Logger
	console *ui.Console
	printer *ui.Printer
	menu    *menu.Menu
}

// New builds the application with its console stack.
func New(sysCfg *system.Config, log logger.Logger) *App {
	if log == nil {
		log = logger.NewColoredLogger()
	}

	printer := ui.NewPrinter()
	return &App{
		sysCfg:  sysCfg,
		logger:  log,
		console: ui.NewConsole(log, os.Stdout),
		printer: printer,
		menu:    menu.NewMenu(printer),
	}
}

// runInteractive is the bare-invocation path: banner, profile picker,
// confirmation, then the removal run.
func (a *App) runInteractive(ctx context.Context, targetsPath string) error {
	cfg, err := target.LoadConfig(targetsPath)
	if err != nil {
		return err
	}

	profile, err := a.menu.SelectProfile(cfg)
	if err != nil {
		return errors.Wrap(err, "profile selection failed")
	}

	return a.runRemove(ctx, profile, uninstall.Options{}, false)
}

// removeByName resolves a profile and executes the removal run.
func (a *App) removeByName(ctx context.Context, profileName, targetsPath string, opts uninstall.Options, assumeYes bool) error {
	cfg, err := target.LoadConfig(targetsPath)
	if err != nil {
		return err
	}

	profile, ok := cfg.Profile(profileName)
	if !ok {
		return errors.Errorf("unknown profile: %s (available: %v)", profileName, cfg.Names())
	}

	return a.runRemove(ctx, profile, opts, assumeYes)
}

func (a *App) runRemove(ctx context.Context, profile *target.Profile, opts uninstall.Options, assumeYes bool) error {
	if !system.IsRoot() {
		return errors.New("root privileges are required to remove packages, run with sudo")
	}

	if !assumeYes {
		ok, err := a.menu.ConfirmRemoval(profile)
		if err != nil {
			return errors.Wrap(err, "confirmation failed")
		}
		if !ok {
			a.logger.Info("Aborted, nothing removed")
			return nil
		}
	}

	if err := a.sysCfg.Validate(); err != nil {
		return errors.Wrap(err, "environment validation failed")
	}

	// History recording is best effort; a broken journal must not block
	// the removal itself.
	var recorder uninstall.Recorder
	jnl, err := journal.Open(a.sysCfg.JournalPath())
	if err != nil {
		a.logger.Warn("Run history unavailable: %v", err)
	} else {
		recorder = jnl
		defer jnl.Close()
	}

	u := uninstall.New(
		profile,
		pkgmgr.NewManager(nil),
		service.NewController(nil),
		service.NewGroupManager(nil),
		residue.NewRemover(),
		firewallCleaner(a.sysCfg, profile, a.logger),
		recorder,
		a.logger,
	).WithProgress(a.console)

	result := u.Run(ctx, opts)
	a.printer.PrintOutcomes(result)

	if result.Failed {
		return ErrRunFailed
	}
	a.console.Success("Profile %s removal complete", profile.Name)
	return nil
}

// firewallCleaner returns the nftables cleaner when the profile asks for a
// firewall flush. Inside a container the docker chains belong to the host,
// so the flush is skipped with a warning.
func firewallCleaner(sysCfg *system.Config, profile *target.Profile, log logger.Logger) uninstall.FirewallCleaner {
	if !profile.FlushFirewall {
		return nil
	}
	if sysCfg.IsContainer() {
		log.Warn("Containerized environment detected, skipping firewall chain cleanup")
		return nil
	}
	return firewall.NewCleaner()
}

// runStatus reports the install state of every package in the profile
// without touching the system.
func (a *App) runStatus(profileName, targetsPath string) error {
	cfg, err := target.LoadConfig(targetsPath)
	if err != nil {
		return err
	}

	profile, ok := cfg.Profile(profileName)
	if !ok {
		return errors.Errorf("unknown profile: %s (available: %v)", profileName, cfg.Names())
	}

	manager := pkgmgr.NewManager(nil)
	installed, queryErr := manager.InstalledSet()
	if queryErr != nil {
		a.logger.Warn("Package database query failed: %v", queryErr)
	}

	states := make(map[string]uninstall.InstallState, len(profile.Packages))
	for _, pkg := range profile.Packages {
		states[pkg] = uninstall.StateOf(installed, queryErr, pkg)
	}

	a.printer.PrintStates(profile.Name, a.sysCfg.Architecture, states, profile.Packages)
	return nil
}

// runHistory lists recent journal entries.
func (a *App) runHistory(ctx context.Context, limit int) error {
	jnl, err := journal.Open(a.sysCfg.JournalPath())
	if err != nil {
		return errors.Wrap(err, "failed to open run history")
	}
	defer jnl.Close()

	runs, err := jnl.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}

	a.printer.PrintRuns(runs)
	return nil
}
