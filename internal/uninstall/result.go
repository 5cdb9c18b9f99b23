package uninstall

// InstallState is the per-package answer from the package database query.
type InstallState int

const (
	// StateInstalled means dpkg reports the package as present.
	StateInstalled InstallState = iota
	// StateAbsent means the package is not installed.
	StateAbsent
	// StateUnknown means the query itself failed. Unknown packages are
	// never removed: skipping beats guessing on a broken dpkg database.
	StateUnknown
)

// String renders the textual representation of an InstallState.
func (s InstallState) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	case StateAbsent:
		return "not-installed"
	default:
		return "unknown"
	}
}

// Action is what the uninstaller did for one package.
type Action string

const (
	ActionRemoved Action = "removed"
	ActionPurged  Action = "purged"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// Outcome records the handling of a single package.
type Outcome struct {
	Package string
	State   InstallState
	Action  Action
	Err     error
}

// Result aggregates a full uninstall run.
type Result struct {
	Profile  string
	Outcomes []Outcome
	Errors   []error
	Failed   bool
}

// Removed counts packages that were actually removed.
func (r *Result) Removed() int {
	count := 0
	for _, o := range r.Outcomes {
		if o.Action == ActionRemoved || o.Action == ActionPurged {
			count++
		}
	}
	return count
}

func (r *Result) fail(err error) {
	r.Failed = true
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}
