package etrade

import (
	"context"
	"fmt"
)

// ListAlerts lists the alerts of the authenticated user.
func (c *Client) ListAlerts(ctx context.Context, format Format) (Response, error) {
	path := "/v1/user/alerts" + format.suffix()
	return c.get(ctx, path, nil, format)
}

// GetAlertDetails retrieves the details of a single alert.
func (c *Client) GetAlertDetails(ctx context.Context, alertID string, format Format) (Response, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alertID is required")
	}
	path := fmt.Sprintf("/v1/user/alerts/%s%s", alertID, format.suffix())
	return c.get(ctx, path, nil, format)
}

// DeleteAlert deletes an alert by id.
func (c *Client) DeleteAlert(ctx context.Context, alertID string, format Format) (Response, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alertID is required")
	}
	path := fmt.Sprintf("/v1/user/alerts/%s%s", alertID, format.suffix())
	return c.delete(ctx, path, format)
}
