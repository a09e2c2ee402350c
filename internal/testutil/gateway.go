package testutil

import (
	"fmt"
	"slices"

	"csync-go/internal/csync"
)

// FakeGateway is an in-memory SourceGateway seeded with fixture data.
type FakeGateway struct {
	// Courses holds every course the fake knows about, active or not.
	Courses []csync.Course
	// Inactive marks course IDs that exist but are not active.
	Inactive map[int64]bool
	// Assignments maps course ID to that course's assignments.
	Assignments map[int64][]csync.Assignment
	// Submissions maps assignment ID to the student's submission. Missing
	// entries behave like a 404 on the wire.
	Submissions map[int64]*csync.Submission

	// Injectable failures.
	CoursesErr     error
	AssignmentsErr error
	SubmissionErr  error

	// SubmissionCalls records assignment IDs passed to GetSubmission.
	SubmissionCalls []int64
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Inactive:    make(map[int64]bool),
		Assignments: make(map[int64][]csync.Assignment),
		Submissions: make(map[int64]*csync.Submission),
	}
}

func (g *FakeGateway) ListActiveCourses(ids []int64) ([]csync.Course, error) {
	if g.CoursesErr != nil {
		return nil, g.CoursesErr
	}

	var out []csync.Course
	for _, c := range g.Courses {
		if g.Inactive[c.ID] {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (g *FakeGateway) ListAssignments(courseID int64) ([]csync.Assignment, error) {
	if g.AssignmentsErr != nil {
		return nil, g.AssignmentsErr
	}
	if _, ok := g.Assignments[courseID]; !ok {
		return nil, fmt.Errorf("unknown course %d", courseID)
	}
	return g.Assignments[courseID], nil
}

func (g *FakeGateway) GetSubmission(courseID, assignmentID int64) (*csync.Submission, error) {
	g.SubmissionCalls = append(g.SubmissionCalls, assignmentID)
	if g.SubmissionErr != nil {
		return nil, g.SubmissionErr
	}
	return g.Submissions[assignmentID], nil
}
