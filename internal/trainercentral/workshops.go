package trainercentral

import (
	"context"
	"net/url"
	"strconv"
)

// Live workshop operations, both course-scoped and global. Scheduled times
// are epoch milliseconds by the time they reach this layer.

// ListOptions paginate and filter session listings. FilterType 5 means
// "upcoming" upstream.
type ListOptions struct {
	FilterType int
	Limit      int
	StartIndex int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	q.Set("filterType", strconv.Itoa(o.FilterType))
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("si", strconv.Itoa(o.StartIndex))
	return q
}

func (c *Client) CreateCourseLiveSession(ctx context.Context, acc Access, courseID string, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "course/"+courseID+"/sessions", "session", fields)
}

func (c *Client) ListCourseLiveSessions(ctx context.Context, acc Access, courseID string, opts ListOptions) (map[string]any, error) {
	return c.get(ctx, acc, "course/"+courseID+"/sessions", opts.values())
}

func (c *Client) ListGlobalWorkshops(ctx context.Context, acc Access, opts ListOptions) (map[string]any, error) {
	return c.get(ctx, acc, "sessions", opts.values())
}

// CreateOccurrence schedules a talk (one instance of a recurring workshop).
func (c *Client) CreateOccurrence(ctx context.Context, acc Access, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "talks", "talk", fields)
}

func (c *Client) UpdateOccurrence(ctx context.Context, acc Access, talkID string, updates map[string]any) (map[string]any, error) {
	return c.put(ctx, acc, "talks/"+talkID, "talk", updates)
}

// InviteLearner enrolls a learner into a course or a course live session.
func (c *Client) InviteLearner(ctx context.Context, acc Access, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "contacts", "learner", fields)
}

// InviteWorkshopUser invites an existing user to a global workshop.
func (c *Client) InviteWorkshopUser(ctx context.Context, acc Access, sessionID string, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sessions/"+sessionID+"/users", "user", fields)
}
