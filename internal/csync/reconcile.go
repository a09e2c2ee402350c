package csync

import (
	"fmt"
	"strconv"
	"time"
)

// descriptionLimit caps sanitized description text stored in the target.
const descriptionLimit = 2000

// untitledName is used when the source record has no name.
const untitledName = "Untitled assignment"

// buildProperties maps a (course, assignment) pair into target field
// values. Absent source values stay nil so the target client omits them.
func (s *SyncService) buildProperties(course Course, a Assignment, now time.Time) RecordProperties {
	p := RecordProperties{
		Name:       a.Name,
		SourceID:   strconv.FormatInt(a.ID, 10),
		CourseName: course.ShortName,
		Status:     ResolveStatus(a, now),
		DueAt:      a.DueAt,
		UpdatedAt:  a.UpdatedAt,
		URL:        a.HTMLURL,
		Points:     a.PointsPossible,
		Submitted:  a.Submission != nil,
	}
	if p.Name == "" {
		p.Name = untitledName
	}
	if a.Submission != nil {
		p.SubmittedAt = a.Submission.SubmittedAt
		p.Score = a.Submission.Score
	}
	if a.Description != "" {
		p.Description = s.sanitizer.Clean(a.Description, descriptionLimit)
	}
	return p
}

// upsertAssignment writes one assignment into the store.
//
// In incremental mode the store is queried for an existing record carrying
// the assignment's natural key and that record is patched; only when no
// record exists is a new one created. This read-before-write is what keeps
// the natural key unique per store, and it is why runs are single-threaded.
// In recreate mode every run targets a freshly migrated empty store, so the
// lookup is skipped.
func (s *SyncService) upsertAssignment(storeID string, course Course, a Assignment, now time.Time) error {
	props := s.buildProperties(course, a, now)

	if s.opts.Mode == ModeIncremental {
		recordID, err := s.target.QueryByIdentity(storeID, props.SourceID)
		if err != nil {
			return fmt.Errorf("querying store for assignment %s: %w", props.SourceID, err)
		}
		if recordID != "" {
			if err := s.target.PatchRecord(recordID, props); err != nil {
				return fmt.Errorf("updating assignment %s: %w", props.SourceID, err)
			}
			s.logger.Info("record updated", "assignment", props.SourceID, "record", recordID, "status", props.Status)
			s.counts.Updated++
			return nil
		}
	}

	if err := s.target.CreateRecord(storeID, props); err != nil {
		return fmt.Errorf("creating assignment %s: %w", props.SourceID, err)
	}
	s.logger.Info("record created", "assignment", props.SourceID, "status", props.Status)
	s.counts.Created++
	return nil
}
