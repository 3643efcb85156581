package medications

import "errors"

// ErrNotFound is reported when a mutation targets a request id that is not
// present in the list.
var ErrNotFound = errors.New("medications: request not found")

type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// UnknownDisplayName is the fallback shown when a medication reference cannot
// be resolved.
const UnknownDisplayName = "Unknown"

// Detail is the resolved, human-readable description of a medication.
type Detail struct {
	ID          string
	DisplayName string
}

// ViewEntry is one row of the medication list shown to the user, joining a
// medication request with its resolved detail.
type ViewEntry struct {
	RequestID string
	Reference string
	Detail    Detail
	Status    Status
}

// List is the ordered medication list of a dashboard model. Mutations are
// local state transitions; remote persistence is not part of this layer.
type List []ViewEntry

// Stop marks the matching entry as stopped. Stopping an already stopped
// entry is a no-op; an unknown request id reports ErrNotFound and leaves the
// list untouched.
func (l List) Stop(requestID string) error {
	for i := range l {
		if l[i].RequestID == requestID {
			l[i].Status = StatusStopped
			return nil
		}
	}
	return ErrNotFound
}

// Add appends a newly prescribed entry. The entry is expected to be resolved
// (render-ready) before it is added.
func (l *List) Add(entry ViewEntry) {
	entry.Status = StatusActive
	*l = append(*l, entry)
}
