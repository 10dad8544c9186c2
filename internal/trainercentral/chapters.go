package trainercentral

import "context"

// Chapter (section) operations. Creation posts to the org-level sections
// collection; edits and deletes address the section through its course.

func (c *Client) CreateChapter(ctx context.Context, acc Access, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sections", "section", fields)
}

func (c *Client) UpdateChapter(ctx context.Context, acc Access, courseID, sectionID string, updates map[string]any) (map[string]any, error) {
	return c.put(ctx, acc, "course/"+courseID+"/sections/"+sectionID, "section", updates)
}

func (c *Client) DeleteChapter(ctx context.Context, acc Access, courseID, sectionID string) (map[string]any, error) {
	return c.delete(ctx, acc, "course/"+courseID+"/sections/"+sectionID)
}
