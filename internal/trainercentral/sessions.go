package trainercentral

import "context"

// Session operations shared by lessons, assignments, tests, and workshops.
// TrainerCentral models all of those as "sessions" distinguished by
// deliveryMode; the proxy keeps that vocabulary on the wire.

// Delivery modes observed in the upstream API.
const (
	DeliveryModeLive    = 3 // live workshop
	DeliveryModeContent = 4 // content-based lesson / assignment
)

func (c *Client) CreateSession(ctx context.Context, acc Access, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sessions", "session", fields)
}

func (c *Client) UpdateSession(ctx context.Context, acc Access, sessionID string, updates map[string]any) (map[string]any, error) {
	return c.put(ctx, acc, "sessions/"+sessionID, "session", updates)
}

func (c *Client) DeleteSession(ctx context.Context, acc Access, sessionID string) (map[string]any, error) {
	return c.delete(ctx, acc, "sessions/"+sessionID)
}

// UploadMaterial attaches an HTML artifact (lesson content, assignment
// instructions) to an existing session. Second leg of the composite creates;
// not transactional with the session create.
func (c *Client) UploadMaterial(ctx context.Context, acc Access, sessionID string, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, acc, "sessions/"+sessionID+"/materials", "material", fields)
}
