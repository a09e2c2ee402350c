// Package canvas implements csync.SourceGateway against the Canvas REST
// API. It owns pagination (RFC 5988 Link headers) and retry on transient
// failures; callers see fully materialized result sets.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"csync-go/internal/csync"
)

// workflow states Canvas reports for enrollable courses we keep.
const (
	courseAvailable = "available"
	courseActive    = "active"
)

// errNotFound marks a 404 so callers can treat absence as data.
var errNotFound = errors.New("not found")

// Client talks to a Canvas instance on behalf of one student token.
type Client struct {
	baseURL  string
	token    string
	httpc    *http.Client
	maxTries uint
}

// NewClient creates a Canvas client for the given instance base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		maxTries: 4,
	}
}

// ListActiveCourses implements csync.SourceGateway. With an explicit
// allow-list each course is fetched individually; inactive courses are
// dropped either way.
func (c *Client) ListActiveCourses(ids []int64) ([]csync.Course, error) {
	if len(ids) > 0 {
		courses := make([]csync.Course, 0, len(ids))
		for _, id := range ids {
			body, _, err := c.get(fmt.Sprintf("%s/api/v1/courses/%d", c.baseURL, id))
			if err != nil {
				return nil, fmt.Errorf("fetching course %d: %w", id, err)
			}
			var co course
			if err := json.Unmarshal(body, &co); err != nil {
				return nil, fmt.Errorf("decoding course %d: %w", id, err)
			}
			if co.active() {
				courses = append(courses, co.toCourse())
			}
		}
		return courses, nil
	}

	var courses []csync.Course
	next := c.baseURL + "/api/v1/courses?" + url.Values{
		"state[]":   {courseAvailable},
		"include[]": {"term"},
		"per_page":  {"100"},
	}.Encode()

	for next != "" {
		body, link, err := c.get(next)
		if err != nil {
			return nil, fmt.Errorf("listing courses: %w", err)
		}
		var batch []course
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("decoding course list: %w", err)
		}
		for _, co := range batch {
			if co.active() {
				courses = append(courses, co.toCourse())
			}
		}
		next = link
	}
	return courses, nil
}

// ListAssignments implements csync.SourceGateway. Submissions are embedded
// where Canvas supplies them.
func (c *Client) ListAssignments(courseID int64) ([]csync.Assignment, error) {
	var assignments []csync.Assignment
	next := fmt.Sprintf("%s/api/v1/courses/%d/assignments?", c.baseURL, courseID) + url.Values{
		"include[]": {"submission"},
		"per_page":  {"100"},
	}.Encode()

	for next != "" {
		body, link, err := c.get(next)
		if err != nil {
			return nil, fmt.Errorf("listing assignments for course %d: %w", courseID, err)
		}
		var batch []assignment
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("decoding assignment list: %w", err)
		}
		for _, a := range batch {
			assignments = append(assignments, a.toAssignment(courseID))
		}
		next = link
	}
	return assignments, nil
}

// GetSubmission implements csync.SourceGateway. A 404 means the student
// has no submission object yet and is reported as (nil, nil).
func (c *Client) GetSubmission(courseID, assignmentID int64) (*csync.Submission, error) {
	u := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d/submissions/self", c.baseURL, courseID, assignmentID)
	body, _, err := c.get(u)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching submission for assignment %d: %w", assignmentID, err)
	}
	var sub submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("decoding submission for assignment %d: %w", assignmentID, err)
	}
	return sub.toSubmission(), nil
}

// get performs an authenticated GET and returns the body and the
// rel="next" pagination link, if any. Network failures, 429, and 5xx are
// retried with exponential backoff; other non-2xx statuses fail
// immediately with a *csync.UpstreamError.
func (c *Client) get(rawURL string) ([]byte, string, error) {
	type page struct {
		body []byte
		next string
	}

	op := func() (page, error) {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return page{}, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return page{}, err // transient, retry
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return page{}, backoff.Permanent(errNotFound)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return page{}, upstreamError(resp)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return page{}, backoff.Permanent(upstreamError(resp))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return page{}, err
		}
		return page{body: body, next: nextLink(resp.Header)}, nil
	}

	p, err := backoff.Retry(context.Background(), op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, "", err
	}
	return p.body, p.next, nil
}

func upstreamError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &csync.UpstreamError{
		API:        "canvas",
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

// nextLink extracts the rel="next" URL from an RFC 5988 Link header.
func nextLink(h http.Header) string {
	for _, part := range strings.Split(h.Get("Link"), ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
