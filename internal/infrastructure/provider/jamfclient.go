// Package provider implements the MDM provider gateway against the Jamf API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	sharedConfig "github.com/amzibnewman/altrii-backend/internal/shared/config"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// onlineWindow is how recently a device must have checked in to count as
// online.
const onlineWindow = 15 * time.Minute

// JamfClient talks to the Jamf-style MDM API. Every method maps onto one
// remote call; retry policy is left to callers.
type JamfClient struct {
	config     sharedConfig.ProviderConfig
	httpClient *http.Client
	logger     logger.Interface
}

func NewJamfClient(config sharedConfig.ProviderConfig, log logger.Interface) *JamfClient {
	return &JamfClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout(),
		},
		logger: log,
	}
}

type invitationRequest struct {
	DeviceName     string `json:"deviceName"`
	OwnerEmail     string `json:"ownerEmail"`
	OrganizationID string `json:"organizationId"`
}

type invitationResponse struct {
	ID             string `json:"id"`
	EnrollmentURL  string `json:"enrollmentUrl"`
	InvitationCode string `json:"invitationCode"`
}

func (c *JamfClient) CreateDeviceInvitation(ctx context.Context, deviceName, ownerEmail string) (*timer.Invitation, error) {
	payload := invitationRequest{
		DeviceName:     deviceName,
		OwnerEmail:     ownerEmail,
		OrganizationID: c.config.OrganizationID,
	}

	var resp invitationResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invitations", payload, &resp); err != nil {
		return nil, err
	}

	return &timer.Invitation{
		InvitationID:   resp.ID,
		EnrollmentURL:  resp.EnrollmentURL,
		InvitationCode: resp.InvitationCode,
	}, nil
}

type profileRequest struct {
	Name         string          `json:"name"`
	DeviceID     string          `json:"deviceId"`
	ExpiresAt    string          `json:"expiresAt"`
	Restrictions json.RawMessage `json:"restrictions"`
}

type profileResponse struct {
	ID string `json:"id"`
}

func (c *JamfClient) CreateRestrictionProfile(ctx context.Context, deviceHandle string, descriptor timer.RestrictionDescriptor) (string, error) {
	restrictions, err := json.Marshal(descriptor.LockedCapabilities)
	if err != nil {
		return "", fmt.Errorf("failed to marshal restrictions: %w", err)
	}

	payload := profileRequest{
		Name:         fmt.Sprintf("Timer Commitment %s (%d days)", descriptor.CommitmentSID, descriptor.CommitmentDays),
		DeviceID:     deviceHandle,
		ExpiresAt:    descriptor.EndAt.UTC().Format(time.RFC3339),
		Restrictions: restrictions,
	}

	var resp profileResponse
	if err := c.do(ctx, http.MethodPost, "/v1/profiles", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.NewProviderError("provider returned profile without ID", false)
	}

	return resp.ID, nil
}

func (c *JamfClient) DeployProfile(ctx context.Context, deviceHandle, profileID string) error {
	path := fmt.Sprintf("/v1/devices/%s/profiles/%s/deploy", deviceHandle, profileID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// RemoveProfile removes a deployed profile. A missing profile is treated as
// success so removal stays safe to repeat.
func (c *JamfClient) RemoveProfile(ctx context.Context, deviceHandle, profileID string) error {
	path := fmt.Sprintf("/v1/devices/%s/profiles/%s", deviceHandle, profileID)
	status, err := c.request(ctx, http.MethodDelete, path, nil, nil)
	if status == http.StatusNotFound {
		c.logger.Debugw("profile already removed", "device_handle", deviceHandle, "profile_id", profileID)
		return nil
	}
	return err
}

type deviceStatusResponse struct {
	LastCheckIn time.Time `json:"lastCheckIn"`
	Compliant   bool      `json:"compliant"`
}

func (c *JamfClient) GetDeviceStatus(ctx context.Context, deviceHandle string) (*timer.DeviceStatus, error) {
	var resp deviceStatusResponse
	path := fmt.Sprintf("/v1/devices/%s", deviceHandle)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return &timer.DeviceStatus{
		Online:    time.Since(resp.LastCheckIn) <= onlineWindow,
		Compliant: resp.Compliant,
		LastSeen:  resp.LastCheckIn,
	}, nil
}

// do performs one authenticated request and decodes the response into out
// when non-nil.
func (c *JamfClient) do(ctx context.Context, method, path string, payload, out any) error {
	_, err := c.request(ctx, method, path, payload, out)
	return err
}

// request performs the remote call and returns the HTTP status alongside the
// error so callers can special-case statuses like 404. Transport failures and
// 5xx responses are retryable provider errors; 4xx responses are not.
func (c *JamfClient) request(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.NewProviderError(fmt.Sprintf("provider request failed: %v", err), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warnw("provider returned error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(data),
		)
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return resp.StatusCode, errors.NewProviderError(
			fmt.Sprintf("provider returned status %d", resp.StatusCode),
			retryable,
			string(data),
		)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.NewProviderError(fmt.Sprintf("failed to decode provider response: %v", err), false)
		}
	}

	return resp.StatusCode, nil
}
