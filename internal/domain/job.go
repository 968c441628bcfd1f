package domain

// JobStatus enumerates job lifecycle states as reported by the queue.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
)

// JobUpdate is one element of a job's status stream. Result is set only on
// completed updates; Logs carry whatever log lines the queue attached to the
// transition.
type JobUpdate struct {
	Status JobStatus
	Logs   []string
	Result *GeneratedImageResult
}
