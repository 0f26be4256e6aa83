// Package journal provides an operation-local undo log. Bridge entry points
// record an inverse closure for every state mutation they perform; if a later
// step fails the journal unwinds in reverse order, leaving all ledgers exactly
// as they were before the call.
package journal

// Journal accumulates undo closures for a single operation.
// A nil *Journal is valid and records nothing.
type Journal struct {
	undos []func()
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// Record appends an undo closure. Safe to call on a nil journal.
func (j *Journal) Record(undo func()) {
	if j == nil || undo == nil {
		return
	}
	j.undos = append(j.undos, undo)
}

// Revert runs all recorded undo closures in reverse order and clears the journal.
func (j *Journal) Revert() {
	if j == nil {
		return
	}
	for i := len(j.undos) - 1; i >= 0; i-- {
		j.undos[i]()
	}
	j.undos = nil
}

// Discard commits the operation by dropping all recorded undo closures.
func (j *Journal) Discard() {
	if j == nil {
		return
	}
	j.undos = nil
}

// Len returns the number of recorded undo closures.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.undos)
}
