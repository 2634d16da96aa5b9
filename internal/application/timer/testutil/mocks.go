// Package testutil provides mock implementations for testing the timer application layer.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
)

// MockCommitmentRepository is an in-memory timer.CommitmentRepository.
type MockCommitmentRepository struct {
	mu          sync.RWMutex
	commitments map[uint]*timer.Commitment
	nextID      uint

	createError error
	getError    error
	updateError error
	deleteError error
	findError   error
}

func NewMockCommitmentRepository() *MockCommitmentRepository {
	return &MockCommitmentRepository{
		commitments: make(map[uint]*timer.Commitment),
	}
}

func (m *MockCommitmentRepository) Create(ctx context.Context, commitment *timer.Commitment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createError != nil {
		return m.createError
	}

	for _, existing := range m.commitments {
		if existing.DeviceID() == commitment.DeviceID() && existing.Status() == vo.StatusActive {
			return timer.ErrActiveCommitmentExists
		}
	}

	if commitment.ID() == 0 {
		m.nextID++
		if err := commitment.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.commitments[commitment.ID()] = commitment
	return nil
}

func (m *MockCommitmentRepository) Update(ctx context.Context, commitment *timer.Commitment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateError != nil {
		return m.updateError
	}
	stored, exists := m.commitments[commitment.ID()]
	if !exists {
		return timer.ErrCommitmentConflict
	}
	if stored.Version() != commitment.Version() {
		return timer.ErrCommitmentConflict
	}
	if err := commitment.SetVersion(commitment.Version() + 1); err != nil {
		return err
	}
	m.commitments[commitment.ID()] = commitment
	return nil
}

func (m *MockCommitmentRepository) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}
	if _, exists := m.commitments[id]; !exists {
		return timer.ErrCommitmentNotFound
	}
	delete(m.commitments, id)
	return nil
}

func (m *MockCommitmentRepository) GetByID(ctx context.Context, id uint) (*timer.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	return m.commitments[id], nil
}

func (m *MockCommitmentRepository) GetBySID(ctx context.Context, sid string) (*timer.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	for _, c := range m.commitments {
		if c.SID() == sid {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCommitmentRepository) GetActiveByDeviceID(ctx context.Context, deviceID uint) (*timer.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	for _, c := range m.commitments {
		if c.DeviceID() == deviceID && c.Status() == vo.StatusActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCommitmentRepository) FindExpired(ctx context.Context, now time.Time) ([]*timer.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findError != nil {
		return nil, m.findError
	}
	var result []*timer.Commitment
	for _, c := range m.commitments {
		if c.Status() == vo.StatusActive && c.IsDue(now) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCommitmentRepository) FindNeedingWarning(ctx context.Context, now time.Time, window time.Duration) ([]*timer.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findError != nil {
		return nil, m.findError
	}
	var result []*timer.Commitment
	for _, c := range m.commitments {
		if c.Status() == vo.StatusActive && !c.WarningSent() && !c.IsDue(now) && !c.EndAt().After(now.Add(window)) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCommitmentRepository) ListByUserID(ctx context.Context, userID uint, filter timer.CommitmentFilter) ([]*timer.Commitment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findError != nil {
		return nil, 0, m.findError
	}
	var result []*timer.Commitment
	for _, c := range m.commitments {
		if c.UserID() != userID {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && c.Status().String() != *filter.Status {
			continue
		}
		result = append(result, c)
	}
	return result, int64(len(result)), nil
}

func (m *MockCommitmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findError != nil {
		return nil, m.findError
	}
	counts := make(map[string]int64)
	for _, c := range m.commitments {
		counts[c.Status().String()]++
	}
	return counts, nil
}

// Seed stores a commitment directly, bypassing the uniqueness check. Tests
// use it to set up rows with controlled IDs and end times.
func (m *MockCommitmentRepository) Seed(commitment *timer.Commitment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments[commitment.ID()] = commitment
	if commitment.ID() > m.nextID {
		m.nextID = commitment.ID()
	}
}

// Count returns the number of stored commitments.
func (m *MockCommitmentRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.commitments)
}

func (m *MockCommitmentRepository) SetCreateError(err error) { m.setErr(&m.createError, err) }
func (m *MockCommitmentRepository) SetGetError(err error)    { m.setErr(&m.getError, err) }
func (m *MockCommitmentRepository) SetUpdateError(err error) { m.setErr(&m.updateError, err) }
func (m *MockCommitmentRepository) SetDeleteError(err error) { m.setErr(&m.deleteError, err) }
func (m *MockCommitmentRepository) SetFindError(err error)   { m.setErr(&m.findError, err) }

func (m *MockCommitmentRepository) setErr(target *error, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*target = err
}

// MockDeviceRepository is an in-memory device.Repository.
type MockDeviceRepository struct {
	mu      sync.RWMutex
	devices map[uint]*device.Device

	getError error
}

func NewMockDeviceRepository() *MockDeviceRepository {
	return &MockDeviceRepository{
		devices: make(map[uint]*device.Device),
	}
}

// AddDevice seeds a device into the mock.
func (m *MockDeviceRepository) AddDevice(dev *device.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[dev.ID()] = dev
}

func (m *MockDeviceRepository) GetByID(ctx context.Context, id uint) (*device.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	return m.devices[id], nil
}

func (m *MockDeviceRepository) GetBySIDForUser(ctx context.Context, sid string, userID uint) (*device.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	for _, d := range m.devices {
		if d.SID() == sid && d.UserID() == userID {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockDeviceRepository) Update(ctx context.Context, dev *device.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[dev.ID()] = dev
	return nil
}

func (m *MockDeviceRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

// MockTierResolver returns a fixed tier or error.
type MockTierResolver struct {
	Tier timer.Tier
	Err  error
}

func (m *MockTierResolver) ActiveTierForUser(ctx context.Context, userID uint) (timer.Tier, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Tier, nil
}

// MockProviderGateway records provider calls and injects failures.
type MockProviderGateway struct {
	mu sync.Mutex

	InvitationCalls    []string
	CreateProfileCalls []string
	DeployCalls        []string
	RemoveCalls        []string
	StatusCalls        []string

	NextProfileID      string
	InvitationError    error
	CreateProfileError error
	DeployError        error
	RemoveError        error
	RemoveDelay        time.Duration
	StatusError        error
	Status             *timer.DeviceStatus
}

func NewMockProviderGateway() *MockProviderGateway {
	return &MockProviderGateway{NextProfileID: "profile-1"}
}

func (m *MockProviderGateway) CreateDeviceInvitation(ctx context.Context, deviceName, ownerEmail string) (*timer.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InvitationCalls = append(m.InvitationCalls, deviceName)
	if m.InvitationError != nil {
		return nil, m.InvitationError
	}
	return &timer.Invitation{
		InvitationID:   "inv-1",
		EnrollmentURL:  "https://mdm.example.com/enroll/inv-1",
		InvitationCode: "123456",
	}, nil
}

func (m *MockProviderGateway) CreateRestrictionProfile(ctx context.Context, deviceHandle string, descriptor timer.RestrictionDescriptor) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateProfileCalls = append(m.CreateProfileCalls, deviceHandle)
	if m.CreateProfileError != nil {
		return "", m.CreateProfileError
	}
	return m.NextProfileID, nil
}

func (m *MockProviderGateway) DeployProfile(ctx context.Context, deviceHandle, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeployCalls = append(m.DeployCalls, fmt.Sprintf("%s/%s", deviceHandle, profileID))
	return m.DeployError
}

func (m *MockProviderGateway) RemoveProfile(ctx context.Context, deviceHandle, profileID string) error {
	m.mu.Lock()
	m.RemoveCalls = append(m.RemoveCalls, fmt.Sprintf("%s/%s", deviceHandle, profileID))
	err := m.RemoveError
	delay := m.RemoveDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockProviderGateway) GetDeviceStatus(ctx context.Context, deviceHandle string) (*timer.DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatusCalls = append(m.StatusCalls, deviceHandle)
	if m.StatusError != nil {
		return nil, m.StatusError
	}
	if m.Status != nil {
		return m.Status, nil
	}
	return &timer.DeviceStatus{Online: true, Compliant: true, LastSeen: time.Now().UTC()}, nil
}

// RemoveCallCount returns how many profile removals were attempted.
func (m *MockProviderGateway) RemoveCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RemoveCalls)
}

// MockNotifier records sent notifications and injects failures.
type MockNotifier struct {
	mu sync.Mutex

	Completions []timer.Notification
	Warnings    []timer.Notification

	CompletionError error
	WarningError    error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendTimerCompletion(ctx context.Context, n timer.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CompletionError != nil {
		return m.CompletionError
	}
	m.Completions = append(m.Completions, n)
	return nil
}

func (m *MockNotifier) SendExpirationWarning(ctx context.Context, n timer.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WarningError != nil {
		return m.WarningError
	}
	m.Warnings = append(m.Warnings, n)
	return nil
}

// MockUserDirectory returns seeded recipients.
type MockUserDirectory struct {
	mu         sync.RWMutex
	recipients map[uint]*timer.Recipient
}

func NewMockUserDirectory() *MockUserDirectory {
	return &MockUserDirectory{recipients: make(map[uint]*timer.Recipient)}
}

func (m *MockUserDirectory) AddRecipient(userID uint, recipient *timer.Recipient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients[userID] = recipient
}

func (m *MockUserDirectory) GetRecipient(ctx context.Context, userID uint) (*timer.Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recipients[userID], nil
}
