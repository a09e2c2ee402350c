package canvas

import (
	"time"

	"csync-go/internal/csync"
)

// Wire shapes for the Canvas payload fields this tool reads. Timestamps
// are decoded as strings and parsed leniently: an unparsable timestamp is
// treated as absent rather than failing the whole run.

type course struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CourseCode    string `json:"course_code"`
	WorkflowState string `json:"workflow_state"`
}

func (c course) active() bool {
	return c.WorkflowState == courseAvailable || c.WorkflowState == courseActive
}

func (c course) toCourse() csync.Course {
	short := c.CourseCode
	if short == "" {
		short = c.Name
	}
	return csync.Course{ID: c.ID, ShortName: short, FullName: c.Name}
}

type assignment struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	CourseID       int64       `json:"course_id"`
	DueAt          string      `json:"due_at"`
	UpdatedAt      string      `json:"updated_at"`
	Description    string      `json:"description"`
	PointsPossible *float64    `json:"points_possible"`
	HTMLURL        string      `json:"html_url"`
	Submission     *submission `json:"submission"`
}

func (a assignment) toAssignment(courseID int64) csync.Assignment {
	if a.CourseID != 0 {
		courseID = a.CourseID
	}
	out := csync.Assignment{
		ID:             a.ID,
		Name:           a.Name,
		CourseID:       courseID,
		DueAt:          parseTime(a.DueAt),
		UpdatedAt:      parseTime(a.UpdatedAt),
		Description:    a.Description,
		PointsPossible: a.PointsPossible,
		HTMLURL:        a.HTMLURL,
	}
	if a.Submission != nil {
		out.Submission = a.Submission.toSubmission()
	}
	return out
}

type submission struct {
	WorkflowState string   `json:"workflow_state"`
	SubmittedAt   string   `json:"submitted_at"`
	GradedAt      string   `json:"graded_at"`
	Score         *float64 `json:"score"`
	Late          bool     `json:"late"`
}

func (s submission) toSubmission() *csync.Submission {
	return &csync.Submission{
		WorkflowState: s.WorkflowState,
		SubmittedAt:   parseTime(s.SubmittedAt),
		GradedAt:      parseTime(s.GradedAt),
		Score:         s.Score,
		Late:          s.Late,
	}
}

// parseTime decodes an RFC 3339 timestamp, returning nil for empty or
// malformed values.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
