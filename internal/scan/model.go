package scan

// Status of a scan session.
type Status uint8

// Session statuses. A session moves Iterating -> Done exactly once.
const (
	StatusIterating Status = iota
	StatusDone
)

// Task selects the work performed on each step.
type Task uint8

// Session tasks.
const (
	// TaskNone walks the path list without touching any file.
	TaskNone Task = iota
	// TaskBuildCatalog identifies each file (checksum or archive
	// inspection) as the cursor passes it.
	TaskBuildCatalog
)

// Outcome of one Step call.
type Outcome int8

// Step outcomes.
const (
	// Error means the session is unusable (nil handle or path list).
	Error Outcome = iota - 1
	// Continue means one path was handled; call Step again.
	Continue
	// Finished means the path list is exhausted.
	Finished
)

// Progress is a point-in-time snapshot of a session, safe to read without
// synchronization.
type Progress struct {
	ID      string `json:"id"`
	Scanned int    `json:"scanned"`
	Total   int    `json:"total"`
	Done    bool   `json:"done"`
}
