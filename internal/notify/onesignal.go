package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"coachtrack/internal/config"
)

const notificationsPath = "/api/v1/notifications"

// oneSignalClient implements Notifier against the OneSignal REST API.
type oneSignalClient struct {
	appID      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOneSignalClient creates a Notifier backed by OneSignal.
func NewOneSignalClient(cfg config.OneSignalConfig) (Notifier, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, errors.New("onesignal app ID and API key are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://onesignal.com"
	}
	return &oneSignalClient{
		appID:   cfg.AppID,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// createNotificationRequest mirrors the provider's request format.
type createNotificationRequest struct {
	AppID            string            `json:"app_id"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	URL              string            `json:"url,omitempty"`
	IncludeAliases   *aliasSelector    `json:"include_aliases,omitempty"`
	TargetChannel    string            `json:"target_channel,omitempty"`
	IncludedSegments []string          `json:"included_segments,omitempty"`
}

type aliasSelector struct {
	ExternalID []string `json:"external_id"`
}

func (c *oneSignalClient) NotifyUser(ctx context.Context, userID string, n Notification) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	return c.send(ctx, createNotificationRequest{
		AppID:          c.appID,
		Headings:       map[string]string{"en": n.Title},
		Contents:       map[string]string{"en": n.Message},
		URL:            n.URL,
		IncludeAliases: &aliasSelector{ExternalID: []string{userID}},
		TargetChannel:  "push",
	})
}

func (c *oneSignalClient) NotifyRole(ctx context.Context, role string, n Notification) error {
	if role == "" {
		return errors.New("role is required")
	}
	return c.send(ctx, createNotificationRequest{
		AppID:            c.appID,
		Headings:         map[string]string{"en": n.Title},
		Contents:         map[string]string{"en": n.Message},
		URL:              n.URL,
		IncludedSegments: []string{role},
	})
}

func (c *oneSignalClient) NotifyAll(ctx context.Context, n Notification) error {
	return c.send(ctx, createNotificationRequest{
		AppID:            c.appID,
		Headings:         map[string]string{"en": n.Title},
		Contents:         map[string]string{"en": n.Message},
		URL:              n.URL,
		IncludedSegments: []string{"Subscribed Users"},
	})
}

func (c *oneSignalClient) send(ctx context.Context, payload createNotificationRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+notificationsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Include a short slice of the body for diagnosis.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("onesignal returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
