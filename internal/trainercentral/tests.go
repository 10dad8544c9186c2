package trainercentral

import "context"

// Test operations. A test is a form attached to a session; questions are
// added to the form in a second call keyed by the formIdValue the create
// returns.

func (c *Client) CreateTestForm(ctx context.Context, acc Access, sessionID string, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sessions/"+sessionID+"/forms", "form", fields)
}

func (c *Client) AddTestQuestions(ctx context.Context, acc Access, sessionID, formIDValue string, questions map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sessions/"+sessionID+"/forms/"+formIDValue+"/questions", "questions", questions)
}

// ListCourseSessions returns every session (lesson, test, assignment,
// workshop) under a course.
func (c *Client) ListCourseSessions(ctx context.Context, acc Access, courseID string) (map[string]any, error) {
	return c.get(ctx, acc, "course/"+courseID+"/sessions", nil)
}
