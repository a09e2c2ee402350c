package notion

import (
	"time"

	"csync-go/internal/csync"
)

// Property names of the assignment-tracking database. The Canvas ID field
// is the identity field: it carries the assignment's natural key as text
// and is what incremental runs query on.
const (
	propName        = "Assignment Name"
	propCanvasID    = "Canvas ID"
	propCourse      = "Course"
	propDueDate     = "Due Date"
	propUpdatedAt   = "Updated At"
	propSubmittedAt = "Submitted At"
	propLink        = "Link"
	propPoints      = "Points"
	propScore       = "Score"
	propStatus      = "Status"
	propSubmitted   = "Submitted"
	propDescription = "Description"
)

// recordProperties serializes field values into Notion page properties.
// Unset source values are left out of the map entirely because Notion
// rejects explicit nulls for unset structured fields.
func recordProperties(p csync.RecordProperties) map[string]any {
	props := map[string]any{
		propName:      map[string]any{"title": []any{textValue(p.Name)}},
		propCanvasID:  map[string]any{"rich_text": []any{textValue(p.SourceID)}},
		propCourse:    map[string]any{"rich_text": []any{textValue(p.CourseName)}},
		propStatus:    map[string]any{"select": map[string]any{"name": string(p.Status)}},
		propSubmitted: map[string]any{"checkbox": p.Submitted},
	}
	if p.DueAt != nil {
		props[propDueDate] = dateValue(*p.DueAt)
	}
	if p.UpdatedAt != nil {
		props[propUpdatedAt] = dateValue(*p.UpdatedAt)
	}
	if p.SubmittedAt != nil {
		props[propSubmittedAt] = dateValue(*p.SubmittedAt)
	}
	if p.URL != "" {
		props[propLink] = map[string]any{"url": p.URL}
	}
	if p.Points != nil {
		props[propPoints] = map[string]any{"number": *p.Points}
	}
	if p.Score != nil {
		props[propScore] = map[string]any{"number": *p.Score}
	}
	if p.Description != "" {
		props[propDescription] = map[string]any{"rich_text": []any{textValue(p.Description)}}
	}
	return props
}

func textValue(s string) map[string]any {
	return map[string]any{"text": map[string]any{"content": s}}
}

func dateValue(t time.Time) map[string]any {
	return map[string]any{
		"date": map[string]any{"start": t.UTC().Format(time.RFC3339)},
	}
}

// titleValue picks the database title: a predecessor schema's rich-text
// title when present, otherwise a plain text title.
func titleValue(title string, schema csync.Schema) any {
	if schema != nil {
		if t, ok := schema["title"]; ok {
			return t
		}
	}
	return []any{textValue(title)}
}

// propertiesValue picks the field definitions: a predecessor schema's
// properties when present, otherwise the baseline set.
func propertiesValue(schema csync.Schema) any {
	if schema != nil {
		if p, ok := schema["properties"]; ok {
			return p
		}
	}
	return baselineProperties()
}

// baselineProperties is the field set for a store with no predecessor.
func baselineProperties() map[string]any {
	return map[string]any{
		propName:        map[string]any{"title": map[string]any{}},
		propCanvasID:    map[string]any{"rich_text": map[string]any{}},
		propCourse:      map[string]any{"rich_text": map[string]any{}},
		propDueDate:     map[string]any{"date": map[string]any{}},
		propUpdatedAt:   map[string]any{"date": map[string]any{}},
		propSubmittedAt: map[string]any{"date": map[string]any{}},
		propLink:        map[string]any{"url": map[string]any{}},
		propPoints:      map[string]any{"number": map[string]any{}},
		propScore:       map[string]any{"number": map[string]any{}},
		propSubmitted:   map[string]any{"checkbox": map[string]any{}},
		propDescription: map[string]any{"rich_text": map[string]any{}},
		propStatus: map[string]any{
			"select": map[string]any{
				"options": []any{
					statusOption(csync.StatusCompleted, "green"),
					statusOption(csync.StatusPending, "blue"),
					statusOption(csync.StatusNotStarted, "gray"),
					statusOption(csync.StatusOverdue, "orange"),
					statusOption(csync.StatusMissing, "red"),
				},
			},
		},
	}
}

func statusOption(s csync.Status, color string) map[string]any {
	return map[string]any{"name": string(s), "color": color}
}
