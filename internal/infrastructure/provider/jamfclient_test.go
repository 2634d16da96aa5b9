package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	sharedConfig "github.com/amzibnewman/altrii-backend/internal/shared/config"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *JamfClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewJamfClient(sharedConfig.ProviderConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		OrganizationID: "org-1",
	}, logger.NewLogger())
}

func TestJamfClient_CreateRestrictionProfile(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/profiles", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"id": "profile-42"})
	})

	endAt := time.Now().UTC().Add(14 * 24 * time.Hour)
	profileID, err := client.CreateRestrictionProfile(context.Background(), "jamf-dev-1", timer.RestrictionDescriptor{
		CommitmentSID:      "tc_x1",
		CommitmentDays:     14,
		EndAt:              endAt,
		LockedCapabilities: vo.DefaultLockedCapabilities(),
	})
	require.NoError(t, err)
	assert.Equal(t, "profile-42", profileID)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "jamf-dev-1", gotBody["deviceId"])
	assert.Contains(t, gotBody["name"], "tc_x1")
}

func TestJamfClient_RemoveProfile_AlreadyRemoved(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	// a missing profile is not an error
	err := client.RemoveProfile(context.Background(), "jamf-dev-1", "profile-gone")
	assert.NoError(t, err)
}

func TestJamfClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"server error is retryable", http.StatusInternalServerError, true},
		{"rate limit is retryable", http.StatusTooManyRequests, true},
		{"bad request is not retryable", http.StatusBadRequest, false},
		{"unauthorized is not retryable", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			err := client.DeployProfile(context.Background(), "jamf-dev-1", "profile-1")
			require.Error(t, err)
			assert.True(t, errors.IsProviderError(err))
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))
		})
	}
}

func TestJamfClient_GetDeviceStatus(t *testing.T) {
	t.Run("recent check-in is online", func(t *testing.T) {
		lastSeen := time.Now().UTC().Add(-5 * time.Minute)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"lastCheckIn": lastSeen.Format(time.RFC3339),
				"compliant":   true,
			})
		})

		status, err := client.GetDeviceStatus(context.Background(), "jamf-dev-1")
		require.NoError(t, err)
		assert.True(t, status.Online)
		assert.True(t, status.Compliant)
	})

	t.Run("stale check-in is offline", func(t *testing.T) {
		lastSeen := time.Now().UTC().Add(-time.Hour)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"lastCheckIn": lastSeen.Format(time.RFC3339),
				"compliant":   false,
			})
		})

		status, err := client.GetDeviceStatus(context.Background(), "jamf-dev-1")
		require.NoError(t, err)
		assert.False(t, status.Online)
	})
}

func TestJamfClient_CreateDeviceInvitation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "org-1", body["organizationId"])
		json.NewEncoder(w).Encode(map[string]string{
			"id":             "inv-9",
			"enrollmentUrl":  "https://mdm.example.com/enroll/inv-9",
			"invitationCode": "654321",
		})
	})

	inv, err := client.CreateDeviceInvitation(context.Background(), "MacBook Pro", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "inv-9", inv.InvitationID)
	assert.Equal(t, "654321", inv.InvitationCode)
}
