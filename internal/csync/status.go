package csync

import "time"

// Status is the derived lifecycle label of an assignment in the target
// store. The enumeration is fixed at five values: the two-state variants
// seen in earlier ad-hoc scripts collapse distinctions (overdue vs missing)
// that the source data already supports.
type Status string

const (
	StatusCompleted  Status = "Completed"
	StatusPending    Status = "Pending"
	StatusNotStarted Status = "Not Started"
	StatusOverdue    Status = "Overdue"
	StatusMissing    Status = "Missing"
)

// Submission workflow states recognized by the resolver.
const (
	workflowGraded        = "graded"
	workflowSubmitted     = "submitted"
	workflowPendingReview = "pending_review"
	workflowUnsubmitted   = "unsubmitted"
)

// ResolveStatus derives the lifecycle status for an assignment. It is pure
// and total: every input combination maps to exactly one label.
//
// Precedence, highest first:
//  1. an explicit "unsubmitted" workflow state forces Not Started
//  2. a graded/submitted/pending_review workflow state, or a recorded
//     submitted/graded timestamp, means Completed
//  3. no due date means Not Started
//  4. past due means Overdue when the submission is flagged late,
//     otherwise Missing
//  5. due now or later means Pending
func ResolveStatus(a Assignment, now time.Time) Status {
	sub := a.Submission

	if sub != nil && sub.WorkflowState == workflowUnsubmitted {
		return StatusNotStarted
	}

	if sub != nil {
		switch sub.WorkflowState {
		case workflowGraded, workflowSubmitted, workflowPendingReview:
			return StatusCompleted
		}
		if sub.SubmittedAt != nil || sub.GradedAt != nil {
			return StatusCompleted
		}
	}

	if a.DueAt == nil {
		return StatusNotStarted
	}

	if a.DueAt.Before(now) {
		if sub != nil && sub.Late {
			return StatusOverdue
		}
		return StatusMissing
	}

	return StatusPending
}
