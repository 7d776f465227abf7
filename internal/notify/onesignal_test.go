package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coachtrack/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Notifier, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOneSignalClient(config.OneSignalConfig{
		AppID:   "test-app",
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client, server
}

func TestNotifyUserPayload(t *testing.T) {
	var got createNotificationRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, notificationsPath, r.URL.Path)
		assert.Equal(t, "Basic test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := client.NotifyUser(context.Background(), "user-1", Notification{
		Title:   "Daily log missing",
		Message: "You have not logged in 4 days",
		URL:     "https://app.example.com/daily",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-app", got.AppID)
	assert.Equal(t, "Daily log missing", got.Headings["en"])
	require.NotNil(t, got.IncludeAliases)
	assert.Equal(t, []string{"user-1"}, got.IncludeAliases.ExternalID)
	assert.Equal(t, "push", got.TargetChannel)
}

func TestNotifyRoleUsesSegments(t *testing.T) {
	var got createNotificationRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := client.NotifyRole(context.Background(), "coach", Notification{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, []string{"coach"}, got.IncludedSegments)
	assert.Nil(t, got.IncludeAliases)
}

func TestSendReportsProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["bad app id"]}`, http.StatusBadRequest)
	})

	err := client.NotifyAll(context.Background(), Notification{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestNewOneSignalClientRequiresCredentials(t *testing.T) {
	_, err := NewOneSignalClient(config.OneSignalConfig{})
	assert.Error(t, err)
}
