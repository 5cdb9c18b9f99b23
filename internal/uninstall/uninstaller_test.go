package uninstall

import (
	"context"
	"errors"
	"testing"

	"napclean/internal/logger"
	"napclean/internal/target"
)

type fakePackageManager struct {
	installed   map[string]struct{}
	queryErr    error
	removeErr   map[string]error
	removeCalls []string
	purgeCalls  []string
	autoremoves int
}

func (f *fakePackageManager) InstalledSet() (map[string]struct{}, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.installed, nil
}

func (f *fakePackageManager) Remove(name string) error {
	f.removeCalls = append(f.removeCalls, name)
	if err, ok := f.removeErr[name]; ok {
		return err
	}
	delete(f.installed, name)
	return nil
}

func (f *fakePackageManager) Purge(name string) error {
	f.purgeCalls = append(f.purgeCalls, name)
	return nil
}

func (f *fakePackageManager) Autoremove() error {
	f.autoremoves++
	return nil
}

type fakePathRemover struct {
	calls []string
	errs  map[string]error
}

func (f *fakePathRemover) RemoveAll(path string) error {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return err
	}
	return nil
}

type fakeServices struct {
	stopped  []string
	disabled []string
	stopErr  map[string]error
}

func (f *fakeServices) Stop(name string) error {
	f.stopped = append(f.stopped, name)
	if err, ok := f.stopErr[name]; ok {
		return err
	}
	return nil
}

func (f *fakeServices) Disable(name string) error {
	f.disabled = append(f.disabled, name)
	return nil
}

type fakeGroups struct {
	deleted []string
}

func (f *fakeGroups) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeProgress struct {
	started []string
	stopped []string
}

func (f *fakeProgress) StartProgress(operation string) {
	f.started = append(f.started, operation)
}

func (f *fakeProgress) StopProgress(operation string) {
	f.stopped = append(f.stopped, operation)
}

// cancellingPackageManager cancels the run context from inside the first
// removal, mimicking a SIGINT arriving mid-step.
type cancellingPackageManager struct {
	fakePackageManager
	cancel context.CancelFunc
}

func (c *cancellingPackageManager) Remove(name string) error {
	c.cancel()
	return c.fakePackageManager.Remove(name)
}

type fakeRecorder struct {
	runs     []string
	actions  []string
	finished []bool
}

func (f *fakeRecorder) BeginRun(ctx context.Context, profile string) (int64, error) {
	f.runs = append(f.runs, profile)
	return int64(len(f.runs)), nil
}

func (f *fakeRecorder) RecordAction(ctx context.Context, runID int64, pkg, action, detail string) error {
	f.actions = append(f.actions, pkg+":"+action)
	return nil
}

func (f *fakeRecorder) FinishRun(ctx context.Context, runID int64, failed bool) error {
	f.finished = append(f.finished, failed)
	return nil
}

func newProfile() *target.Profile {
	return &target.Profile{
		Name:     "test",
		Packages: []string{"foo", "bar"},
	}
}

func TestRun_RemovesInstalledSkipsAbsent(t *testing.T) {
	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	log := logger.NewMockLogger()

	u := New(newProfile(), pm, nil, nil, &fakePathRemover{}, nil, nil, log)
	result := u.Run(context.Background(), Options{})

	if result.Failed {
		t.Fatalf("expected success, got failed result: %v", result.Errors)
	}
	if len(pm.removeCalls) != 1 || pm.removeCalls[0] != "foo" {
		t.Fatalf("expected exactly one removal for foo, got %v", pm.removeCalls)
	}
	if len(pm.purgeCalls) != 0 {
		t.Fatalf("expected no purge calls, got %v", pm.purgeCalls)
	}
	if pm.autoremoves != 1 {
		t.Fatalf("expected one autoremove, got %d", pm.autoremoves)
	}
	if !log.HasEntry(logger.LevelInfo, "bar not installed, skipping") {
		t.Fatal("expected skip report for bar")
	}
}

func TestRun_PurgeModeRemovesThenPurges(t *testing.T) {
	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	profile := newProfile()
	profile.Purge = true

	u := New(profile, pm, nil, nil, &fakePathRemover{}, nil, nil, logger.NewMockLogger())
	result := u.Run(context.Background(), Options{})

	if result.Failed {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	if len(pm.removeCalls) != 1 {
		t.Fatalf("expected one remove call, got %v", pm.removeCalls)
	}
	if len(pm.purgeCalls) != 1 || pm.purgeCalls[0] != "foo" {
		t.Fatalf("expected one purge call for foo, got %v", pm.purgeCalls)
	}
	if result.Outcomes[0].Action != ActionPurged {
		t.Fatalf("expected purged outcome, got %s", result.Outcomes[0].Action)
	}
}

func TestRun_RemovalFailureContinuesAndFailsRun(t *testing.T) {
	pm := &fakePackageManager{
		installed: map[string]struct{}{"foo": {}, "bar": {}},
		removeErr: map[string]error{"foo": errors.New("dpkg lock held")},
	}

	u := New(newProfile(), pm, nil, nil, &fakePathRemover{}, nil, nil, logger.NewMockLogger())
	result := u.Run(context.Background(), Options{})

	if !result.Failed {
		t.Fatal("expected failed result")
	}
	if len(pm.removeCalls) != 2 {
		t.Fatalf("expected bar to be processed after foo failed, got %v", pm.removeCalls)
	}
	if pm.autoremoves != 1 {
		t.Fatalf("cleanup must still run once, got %d", pm.autoremoves)
	}
	if result.Outcomes[0].Action != ActionFailed {
		t.Fatalf("expected failed outcome for foo, got %s", result.Outcomes[0].Action)
	}
	if result.Outcomes[1].Action != ActionRemoved {
		t.Fatalf("expected removed outcome for bar, got %s", result.Outcomes[1].Action)
	}
}

func TestRun_QueryFailureSkipsEverything(t *testing.T) {
	pm := &fakePackageManager{queryErr: errors.New("dpkg database corrupt")}
	log := logger.NewMockLogger()

	u := New(newProfile(), pm, nil, nil, &fakePathRemover{}, nil, nil, log)
	result := u.Run(context.Background(), Options{})

	if !result.Failed {
		t.Fatal("a failed query must fail the run")
	}
	if len(pm.removeCalls) != 0 {
		t.Fatalf("unqueryable packages must never be removed, got %v", pm.removeCalls)
	}
	if pm.autoremoves != 1 {
		t.Fatalf("cleanup must still run once, got %d", pm.autoremoves)
	}
	for _, outcome := range result.Outcomes {
		if outcome.State != StateUnknown || outcome.Action != ActionSkipped {
			t.Fatalf("expected unknown/skipped, got %s/%s", outcome.State, outcome.Action)
		}
	}
}

func TestRun_SecondRunSkipsAll(t *testing.T) {
	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}, "bar": {}}}
	profile := newProfile()

	u := New(profile, pm, nil, nil, &fakePathRemover{}, nil, nil, logger.NewMockLogger())
	first := u.Run(context.Background(), Options{})
	if first.Removed() != 2 {
		t.Fatalf("expected two removals on first run, got %d", first.Removed())
	}

	second := u.Run(context.Background(), Options{})
	if second.Removed() != 0 {
		t.Fatalf("expected no removals on second run, got %d", second.Removed())
	}
	for _, outcome := range second.Outcomes {
		if outcome.Action != ActionSkipped {
			t.Fatalf("expected all packages skipped on second run, got %s for %s", outcome.Action, outcome.Package)
		}
	}
}

func TestRun_ResidualPathsAndKeepFiles(t *testing.T) {
	profile := newProfile()
	profile.ResidualPaths = []string{"/opt/QQ", "/root/.config/QQ"}

	pm := &fakePackageManager{installed: map[string]struct{}{}}
	paths := &fakePathRemover{}

	u := New(profile, pm, nil, nil, paths, nil, nil, logger.NewMockLogger())
	u.Run(context.Background(), Options{})

	if len(paths.calls) != 2 {
		t.Fatalf("expected both residual paths deleted, got %v", paths.calls)
	}

	paths.calls = nil
	u.Run(context.Background(), Options{KeepFiles: true})
	if len(paths.calls) != 0 {
		t.Fatalf("expected no deletions with KeepFiles, got %v", paths.calls)
	}
}

func TestRun_PathDeletionFailureFailsRun(t *testing.T) {
	profile := newProfile()
	profile.ResidualPaths = []string{"/opt/QQ"}

	pm := &fakePackageManager{installed: map[string]struct{}{}}
	paths := &fakePathRemover{errs: map[string]error{"/opt/QQ": errors.New("permission denied")}}

	u := New(profile, pm, nil, nil, paths, nil, nil, logger.NewMockLogger())
	result := u.Run(context.Background(), Options{})

	if !result.Failed {
		t.Fatal("path deletion failure must fail the run")
	}
}

func TestRun_ServicesStoppedBeforePackages(t *testing.T) {
	profile := newProfile()
	profile.Services = []string{"docker", "containerd"}
	profile.Groups = []string{"docker"}

	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	svcs := &fakeServices{}
	groups := &fakeGroups{}

	u := New(profile, pm, svcs, groups, &fakePathRemover{}, nil, nil, logger.NewMockLogger())
	result := u.Run(context.Background(), Options{})

	if result.Failed {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	if len(svcs.stopped) != 2 {
		t.Fatalf("expected both services stopped, got %v", svcs.stopped)
	}
	if len(groups.deleted) != 1 || groups.deleted[0] != "docker" {
		t.Fatalf("expected docker group deleted, got %v", groups.deleted)
	}
}

func TestRun_ServiceStopFailureContinues(t *testing.T) {
	profile := newProfile()
	profile.Services = []string{"docker"}

	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	svcs := &fakeServices{stopErr: map[string]error{"docker": errors.New("unit busy")}}

	u := New(profile, pm, svcs, nil, &fakePathRemover{}, nil, nil, logger.NewMockLogger())
	result := u.Run(context.Background(), Options{})

	if !result.Failed {
		t.Fatal("service stop failure must fail the run")
	}
	if len(pm.removeCalls) != 1 {
		t.Fatalf("packages must still be processed, got %v", pm.removeCalls)
	}
}

func TestRun_RecordsJournalEntries(t *testing.T) {
	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	rec := &fakeRecorder{}

	u := New(newProfile(), pm, nil, nil, &fakePathRemover{}, nil, rec, logger.NewMockLogger())
	u.Run(context.Background(), Options{})

	if len(rec.runs) != 1 || rec.runs[0] != "test" {
		t.Fatalf("expected one recorded run, got %v", rec.runs)
	}
	if len(rec.actions) != 2 {
		t.Fatalf("expected one recorded action per package, got %v", rec.actions)
	}
	if len(rec.finished) != 1 || rec.finished[0] {
		t.Fatalf("expected run recorded as successful, got %v", rec.finished)
	}
}

func TestRun_ProgressWrapsLongSteps(t *testing.T) {
	profile := newProfile()
	profile.ResidualPaths = []string{"/opt/QQ"}

	pm := &fakePackageManager{installed: map[string]struct{}{"foo": {}}}
	progress := &fakeProgress{}

	u := New(profile, pm, nil, nil, &fakePathRemover{}, nil, nil, logger.NewMockLogger()).
		WithProgress(progress)
	u.Run(context.Background(), Options{})

	if len(progress.started) != 2 {
		t.Fatalf("expected dependency cleanup and residual deletion wrapped in progress, got %v", progress.started)
	}
	if len(progress.stopped) != len(progress.started) {
		t.Fatalf("every started indicator must be stopped, got %v / %v", progress.started, progress.stopped)
	}
}

func TestRun_CancellationSkipsRemainingSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profile := newProfile()
	profile.Groups = []string{"docker"}
	profile.ResidualPaths = []string{"/opt/QQ"}

	pm := &cancellingPackageManager{
		fakePackageManager: fakePackageManager{installed: map[string]struct{}{"foo": {}, "bar": {}}},
		cancel:             cancel,
	}
	paths := &fakePathRemover{}
	groups := &fakeGroups{}

	u := New(profile, pm, nil, groups, paths, nil, nil, logger.NewMockLogger())
	result := u.Run(ctx, Options{})

	if !result.Failed {
		t.Fatal("an interrupted run must be reported as failed")
	}
	if len(pm.removeCalls) != 1 {
		t.Fatalf("no further packages may be processed after cancellation, got %v", pm.removeCalls)
	}
	if pm.autoremoves != 0 {
		t.Fatalf("dependency cleanup must be skipped after cancellation, got %d", pm.autoremoves)
	}
	if len(groups.deleted) != 0 {
		t.Fatalf("group deletion must be skipped after cancellation, got %v", groups.deleted)
	}
	if len(paths.calls) != 0 {
		t.Fatalf("residual deletion must be skipped after cancellation, got %v", paths.calls)
	}
}

func TestStateOf(t *testing.T) {
	installed := map[string]struct{}{"foo": {}}

	tests := []struct {
		name     string
		queryErr error
		pkg      string
		want     InstallState
	}{
		{"installed", nil, "foo", StateInstalled},
		{"absent", nil, "bar", StateAbsent},
		{"query error", errors.New("boom"), "foo", StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(installed, tt.queryErr, tt.pkg); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
