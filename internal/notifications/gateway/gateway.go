// Package gateway wraps the external message gateway behind a narrow
// synchronous interface: send an email, get back a delivery id or an
// error. Outgoing messages are tagged with the notification record id so
// downstream consumers can deduplicate the at-least-once deliveries.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"tutorhub/pkg/client"
	"tutorhub/pkg/config"
)

// HeaderNotificationID carries the NotificationRecord id on every send.
const HeaderNotificationID = "X-Notification-ID"

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Gateway interface {
	Send(ctx context.Context, notificationID string, email Email) (string, error)
}

type sendResponse struct {
	ID string `json:"id"`
}

type httpGateway struct {
	client *client.HttpClient
	cfg    *config.Config
}

func NewHTTPGateway(cfg *config.Config) Gateway {
	return &httpGateway{
		client: client.NewHttpClient(cfg.GatewayBaseURL, cfg.GatewayTimeout),
		cfg:    cfg,
	}
}

func (g *httpGateway) Send(ctx context.Context, notificationID string, email Email) (string, error) {
	headers := map[string]string{
		HeaderNotificationID: notificationID,
	}

	resp, err := g.client.POSTWithHeaders(ctx, "/send", email, headers)
	if err != nil {
		return "", fmt.Errorf("gateway send failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("gateway send failed: unexpected status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return "", fmt.Errorf("gateway response decode failed: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("gateway response missing delivery id")
	}

	return result.ID, nil
}
