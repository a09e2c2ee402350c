package csync_test

import (
	"testing"
	"time"

	"csync-go/internal/csync"
)

func TestResolveStatus(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name       string
		assignment csync.Assignment
		want       csync.Status
	}{
		{
			name:       "no submission and no due date",
			assignment: csync.Assignment{},
			want:       csync.StatusNotStarted,
		},
		{
			name:       "no submission and future due date",
			assignment: csync.Assignment{DueAt: &future},
			want:       csync.StatusPending,
		},
		{
			name:       "no submission and past due date",
			assignment: csync.Assignment{DueAt: &past},
			want:       csync.StatusMissing,
		},
		{
			name: "graded workflow state",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{WorkflowState: "graded"},
			},
			want: csync.StatusCompleted,
		},
		{
			name: "submitted workflow state overrides past due",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{WorkflowState: "submitted"},
			},
			want: csync.StatusCompleted,
		},
		{
			name: "pending_review workflow state",
			assignment: csync.Assignment{
				DueAt:      &future,
				Submission: &csync.Submission{WorkflowState: "pending_review"},
			},
			want: csync.StatusCompleted,
		},
		{
			name: "submitted timestamp without workflow state",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{SubmittedAt: &past},
			},
			want: csync.StatusCompleted,
		},
		{
			name: "graded timestamp without workflow state",
			assignment: csync.Assignment{
				Submission: &csync.Submission{GradedAt: &past},
			},
			want: csync.StatusCompleted,
		},
		{
			name: "unsubmitted wins even with graded timestamp",
			assignment: csync.Assignment{
				DueAt: &future,
				Submission: &csync.Submission{
					WorkflowState: "unsubmitted",
					GradedAt:      &past,
				},
			},
			want: csync.StatusNotStarted,
		},
		{
			name: "unsubmitted with past due date",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{WorkflowState: "unsubmitted"},
			},
			want: csync.StatusNotStarted,
		},
		{
			name: "past due with late flag",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{Late: true},
			},
			want: csync.StatusOverdue,
		},
		{
			name: "past due without late flag",
			assignment: csync.Assignment{
				DueAt:      &past,
				Submission: &csync.Submission{},
			},
			want: csync.StatusMissing,
		},
		{
			name: "due exactly now counts as pending",
			assignment: csync.Assignment{
				DueAt: &now,
			},
			want: csync.StatusPending,
		},
		{
			name: "empty submission with no due date",
			assignment: csync.Assignment{
				Submission: &csync.Submission{},
			},
			want: csync.StatusNotStarted,
		},
		{
			name: "zero score does not mean absent submission",
			assignment: csync.Assignment{
				DueAt: &future,
				Submission: &csync.Submission{
					WorkflowState: "graded",
					Score:         new(float64),
				},
			},
			want: csync.StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := csync.ResolveStatus(tt.assignment, now)
			if got != tt.want {
				t.Errorf("ResolveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveStatus_Deterministic(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	a := csync.Assignment{
		DueAt:      &due,
		Submission: &csync.Submission{Late: true},
	}

	first := csync.ResolveStatus(a, now)
	for i := 0; i < 5; i++ {
		if got := csync.ResolveStatus(a, now); got != first {
			t.Fatalf("ResolveStatus() not deterministic: %q then %q", first, got)
		}
	}
}
