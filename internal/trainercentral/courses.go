package trainercentral

import "context"

// Course operations. Write payloads travel inside a {"course": {...}}
// envelope; responses come back verbatim.

func (c *Client) CreateCourse(ctx context.Context, acc Access, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "courses", "course", fields)
}

func (c *Client) GetCourse(ctx context.Context, acc Access, courseID string) (map[string]any, error) {
	return c.get(ctx, acc, "courses/"+courseID, nil)
}

func (c *Client) ListCourses(ctx context.Context, acc Access) (map[string]any, error) {
	return c.get(ctx, acc, "courses", nil)
}

func (c *Client) UpdateCourse(ctx context.Context, acc Access, courseID string, updates map[string]any) (map[string]any, error) {
	return c.put(ctx, acc, "courses/"+courseID, "course", updates)
}

func (c *Client) DeleteCourse(ctx context.Context, acc Access, courseID string) (map[string]any, error) {
	return c.delete(ctx, acc, "courses/"+courseID)
}
