package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TimerCommitmentModel{},
		&models.DeviceModel{},
		&models.UserModel{},
		&models.SubscriptionModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestCommitment(t *testing.T, sid string, userID, deviceID uint) *timer.Commitment {
	t.Helper()
	c, err := timer.NewCommitment(sid, userID, deviceID, timer.TierMonthly, 14)
	require.NoError(t, err)
	return c
}

// insertCommitmentRow writes a row directly so tests can control end times.
func insertCommitmentRow(t *testing.T, db *gorm.DB, sid string, deviceID uint, endAt time.Time, status vo.CommitmentStatus, warningSent bool) uint {
	t.Helper()

	var active *string
	if status == vo.StatusActive {
		k := "active"
		active = &k
	}

	model := &models.TimerCommitmentModel{
		SID:                sid,
		UserID:             1,
		DeviceID:           deviceID,
		ActiveKey:          active,
		Tier:               timer.TierMonthly.String(),
		CommitmentDays:     14,
		StartAt:            endAt.Add(-14 * 24 * time.Hour),
		EndAt:              endAt,
		Status:             status.String(),
		WarningSent:        warningSent,
		LockedCapabilities: []byte(`{"profileRemoval":false,"factoryReset":false,"appInstallation":false,"systemSettings":false}`),
		Version:            1,
	}
	require.NoError(t, db.Create(model).Error)
	return model.ID
}

func TestTimerCommitmentRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	t.Run("create commitment successfully", func(t *testing.T) {
		c := createTestCommitment(t, "tc_create1", 1, 100)

		err := repo.Create(ctx, c)
		assert.NoError(t, err)
		assert.NotZero(t, c.ID())
	})

	t.Run("second active commitment for same device is rejected", func(t *testing.T) {
		c1 := createTestCommitment(t, "tc_dup1", 1, 200)
		require.NoError(t, repo.Create(ctx, c1))

		c2 := createTestCommitment(t, "tc_dup2", 1, 200)
		err := repo.Create(ctx, c2)
		assert.ErrorIs(t, err, timer.ErrActiveCommitmentExists)
	})

	t.Run("new active commitment allowed once previous is terminal", func(t *testing.T) {
		c1 := createTestCommitment(t, "tc_seq1", 1, 300)
		require.NoError(t, repo.Create(ctx, c1))

		require.NoError(t, c1.MarkManuallyExpired())
		require.NoError(t, repo.Update(ctx, c1))

		c2 := createTestCommitment(t, "tc_seq2", 1, 300)
		assert.NoError(t, repo.Create(ctx, c2))
	})
}

func TestTimerCommitmentRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	t.Run("status transition and enforcement ref round-trip", func(t *testing.T) {
		c := createTestCommitment(t, "tc_upd1", 1, 400)
		require.NoError(t, repo.Create(ctx, c))

		ref, err := vo.NewEnforcementRef("jamf-dev-1", "profile-1")
		require.NoError(t, err)
		require.NoError(t, c.AttachEnforcement(ref))
		require.NoError(t, repo.Update(ctx, c))

		found, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		require.NotNil(t, found.EnforcementRef())
		assert.Equal(t, "jamf-dev-1", found.EnforcementRef().DeviceHandle())
		assert.Equal(t, "profile-1", found.EnforcementRef().ProfileID())

		require.NoError(t, found.MarkExpired())
		require.NoError(t, repo.Update(ctx, found))

		again, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)
		assert.Equal(t, vo.StatusExpired, again.Status())
	})

	t.Run("update of missing commitment is rejected", func(t *testing.T) {
		c := createTestCommitment(t, "tc_upd2", 1, 401)
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.Delete(ctx, c.ID()))

		require.NoError(t, c.MarkExpired())
		err := repo.Update(ctx, c)
		assert.ErrorIs(t, err, timer.ErrCommitmentConflict)
	})

	t.Run("stale copy cannot overwrite a concurrent terminal transition", func(t *testing.T) {
		c := createTestCommitment(t, "tc_upd3", 1, 402)
		require.NoError(t, repo.Create(ctx, c))

		first, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)

		require.NoError(t, first.MarkExpired())
		require.NoError(t, repo.Update(ctx, first))

		require.NoError(t, second.MarkManuallyExpired())
		err = repo.Update(ctx, second)
		assert.ErrorIs(t, err, timer.ErrCommitmentConflict)

		stored, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)
		assert.Equal(t, vo.StatusExpired, stored.Status())
	})
}

func TestTimerCommitmentRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	c := createTestCommitment(t, "tc_del1", 1, 500)
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.Delete(ctx, c.ID()))

	found, err := repo.GetByID(ctx, c.ID())
	assert.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, repo.Delete(ctx, c.ID()), timer.ErrCommitmentNotFound)
}

func TestTimerCommitmentRepository_GetActiveByDeviceID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	c := createTestCommitment(t, "tc_act1", 1, 600)
	require.NoError(t, repo.Create(ctx, c))

	found, err := repo.GetActiveByDeviceID(ctx, 600)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.SID(), found.SID())

	none, err := repo.GetActiveByDeviceID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTimerCommitmentRepository_FindExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	insertCommitmentRow(t, db, "tc_exp1", 700, now.Add(-time.Hour), vo.StatusActive, false)
	insertCommitmentRow(t, db, "tc_exp2", 701, now.Add(time.Hour), vo.StatusActive, false)
	insertCommitmentRow(t, db, "tc_exp3", 702, now.Add(-2*time.Hour), vo.StatusExpired, false)

	expired, err := repo.FindExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "tc_exp1", expired[0].SID())
}

func TestTimerCommitmentRepository_FindNeedingWarning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()
	window := 24 * time.Hour

	// inside the window, not warned
	insertCommitmentRow(t, db, "tc_warn1", 800, now.Add(10*time.Hour), vo.StatusActive, false)
	// inside the window but already warned
	insertCommitmentRow(t, db, "tc_warn2", 801, now.Add(10*time.Hour), vo.StatusActive, true)
	// outside the window
	insertCommitmentRow(t, db, "tc_warn3", 802, now.Add(48*time.Hour), vo.StatusActive, false)
	// already due, the expiry pass owns it
	insertCommitmentRow(t, db, "tc_warn4", 803, now.Add(-time.Hour), vo.StatusActive, false)

	needing, err := repo.FindNeedingWarning(ctx, now, window)
	require.NoError(t, err)
	require.Len(t, needing, 1)
	assert.Equal(t, "tc_warn1", needing[0].SID())
}

func TestTimerCommitmentRepository_ListByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	insertCommitmentRow(t, db, "tc_list1", 900, now.Add(time.Hour), vo.StatusActive, false)
	insertCommitmentRow(t, db, "tc_list2", 901, now.Add(-time.Hour), vo.StatusExpired, false)
	insertCommitmentRow(t, db, "tc_list3", 902, now.Add(-2*time.Hour), vo.StatusManuallyExpired, false)

	t.Run("all for user", func(t *testing.T) {
		items, total, err := repo.ListByUserID(ctx, 1, timer.CommitmentFilter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 3)
	})

	t.Run("filtered by status", func(t *testing.T) {
		status := vo.StatusExpired.String()
		items, total, err := repo.ListByUserID(ctx, 1, timer.CommitmentFilter{Status: &status, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "tc_list2", items[0].SID())
	})

	t.Run("pagination", func(t *testing.T) {
		items, total, err := repo.ListByUserID(ctx, 1, timer.CommitmentFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 1)
	})
}

func TestTimerCommitmentRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimerCommitmentRepository(db, logger.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	insertCommitmentRow(t, db, "tc_cnt1", 1000, now.Add(time.Hour), vo.StatusActive, false)
	insertCommitmentRow(t, db, "tc_cnt2", 1001, now.Add(-time.Hour), vo.StatusExpired, false)
	insertCommitmentRow(t, db, "tc_cnt3", 1002, now.Add(-time.Hour), vo.StatusExpired, false)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[vo.StatusActive.String()])
	assert.Equal(t, int64(2), counts[vo.StatusExpired.String()])
}
