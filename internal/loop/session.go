package loop

// Status is the repair session state
type Status string

// Session states. Dirty means errors are present or unknown; Ok means the
// last build succeeded with no known-bad marker in the source; Stuck means a
// required recovery step failed irrecoverably.
const (
	StatusDirty Status = "dirty"
	StatusOk    Status = "ok"
	StatusStuck Status = "stuck"
)

// Session is the unit of work: one end-to-end run of the control loop
// against one target file. Owned exclusively by the Runner, mutated only by
// it, and discarded when Run returns.
type Session struct {
	ID       string
	Target   string
	Iter     int
	MaxIters int
	Beam     int
	Updates  int
	Theme    string
	Status   Status
	Errors   []string

	didDoc bool // documentation phase runs at most once
}

// NewSession creates a session with clamped budgets and initial Dirty status
func NewSession(id, target string, maxIters, beam, updates int, theme string) *Session {
	if maxIters < 1 {
		maxIters = 1
	}
	if beam < 1 {
		beam = 1
	}
	if updates < 0 {
		updates = 0
	}
	return &Session{
		ID:       id,
		Target:   target,
		MaxIters: maxIters,
		Beam:     beam,
		Updates:  updates,
		Theme:    theme,
		Status:   StatusDirty,
	}
}
