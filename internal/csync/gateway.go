package csync

import "time"

// Course is the source-side course context for a sync run.
// It is built once per run and never persisted.
type Course struct {
	ID        int64
	ShortName string
	FullName  string
}

// Submission is the submission sub-state of an assignment for the
// authenticated student. All pointer fields are nil when the source
// omits them.
type Submission struct {
	WorkflowState string
	SubmittedAt   *time.Time
	GradedAt      *time.Time
	Score         *float64
	Late          bool
}

// Assignment is one source record. ID is the natural key: it is stable
// across runs and used to prevent duplicate target entries.
type Assignment struct {
	ID             int64
	Name           string
	CourseID       int64
	DueAt          *time.Time
	UpdatedAt      *time.Time
	Description    string
	PointsPossible *float64
	HTMLURL        string
	Submission     *Submission
}

// SourceGateway reads courses and assignments from the learning-management
// source. Implementations own transport concerns (pagination, retry); the
// service layer never retries.
type SourceGateway interface {
	// ListActiveCourses returns active courses. When ids is non-empty only
	// those courses are fetched, and inactive ones are dropped.
	ListActiveCourses(ids []int64) ([]Course, error)

	// ListAssignments returns all assignments for a course, with the
	// student's submission embedded where the source provides it.
	ListAssignments(courseID int64) ([]Assignment, error)

	// GetSubmission fetches the submission for a single assignment.
	// A missing submission (404) is (nil, nil), not an error.
	GetSubmission(courseID, assignmentID int64) (*Submission, error)
}
