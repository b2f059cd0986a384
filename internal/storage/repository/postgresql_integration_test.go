package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workabroad/application-portal/internal/models"
)

func TestStorage_UpsertStep1(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")

	id, err := storage.UpsertStep1(ctx, userUID, models.PassportNeeds)
	require.NoError(t, err)
	assert.Greater(t, id, 0)

	// Повторный вызов обновляет статус той же заявки
	again, err := storage.UpsertStep1(ctx, userUID, models.PassportHas)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	app, err := storage.GetApplicationByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, models.PassportHas, app.PassportStatus)
}

func TestStorage_GetApplicationByUser_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetApplicationByUser(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_MarkSubmitted(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	factory.CreateCompleteApplication(t, userUID)

	now := time.Now().UTC()
	require.NoError(t, storage.MarkSubmitted(ctx, userUID, now))

	app, err := storage.GetApplicationByUser(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, app.Submitted)
	require.NotNil(t, app.SubmittedAt)

	// Повторная отправка конфликтует, отсутствующая заявка не найдена
	assert.ErrorIs(t, storage.MarkSubmitted(ctx, userUID, now), ErrConflict)
	assert.ErrorIs(t, storage.MarkSubmitted(ctx, uuid.New().String(), now), ErrNotFound)
}

func TestStorage_UpdateStep2_LockedAfterSubmission(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	id := factory.CreateCompleteApplication(t, userUID)
	factory.SetSubmitted(t, id, time.Now().UTC())

	err := storage.UpdateStep2(ctx, userUID, "+700800900",
		time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), "master", "teacher", "married")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_UpsertStep1_LockedAfterSubmission(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	id := factory.CreateCompleteApplication(t, userUID)
	factory.SetSubmitted(t, id, time.Now().UTC())

	// DO UPDATE условен, поэтому отправленная заявка не перезаписывается
	_, err := storage.UpsertStep1(ctx, userUID, models.PassportNeeds)
	assert.ErrorIs(t, err, ErrConflict)

	app, err := storage.GetApplicationByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, models.PassportHas, app.PassportStatus)
}

func TestStorage_FindAutoApprovable(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	cutoff := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Отправлена ровно на границе: граница включающая
	atCutoffUID := factory.CreateUser(t, uniqueEmail("cutoff"), "At Cutoff")
	atCutoffID := factory.CreateCompleteApplication(t, atCutoffUID)
	factory.SetSubmitted(t, atCutoffID, cutoff)

	// Отправлена раньше границы
	oldUID := factory.CreateUser(t, uniqueEmail("old"), "Old Enough")
	oldID := factory.CreateCompleteApplication(t, oldUID)
	factory.SetSubmitted(t, oldID, cutoff.Add(-time.Hour))

	// Отправлена позже границы - еще рано
	freshUID := factory.CreateUser(t, uniqueEmail("fresh"), "Too Fresh")
	freshID := factory.CreateCompleteApplication(t, freshUID)
	factory.SetSubmitted(t, freshID, cutoff.Add(time.Second))

	// Уже одобрена - не кандидат
	approvedUID := factory.CreateUser(t, uniqueEmail("approved"), "Already Approved")
	approvedID := factory.CreateCompleteApplication(t, approvedUID)
	factory.SetSubmitted(t, approvedID, cutoff.Add(-time.Hour))
	factory.SetApproved(t, approvedID, cutoff, nil)

	rows, err := storage.FindAutoApprovable(ctx, cutoff)
	require.NoError(t, err)

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.ElementsMatch(t, []int{atCutoffID, oldID}, ids)
}

func TestStorage_AutoApprove(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	id := factory.CreateCompleteApplication(t, userUID)
	factory.SetSubmitted(t, id, time.Now().UTC().Add(-48*time.Hour))

	now := time.Now().UTC()
	changed, err := storage.AutoApprove(ctx, id, now)
	require.NoError(t, err)
	assert.True(t, changed)

	// Вместе с одобрением стартует отсчет напоминаний
	app, err := storage.GetApplicationByUser(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, app.Approved)
	require.NotNil(t, app.ApprovedAt)
	require.NotNil(t, app.LastReminderSent)

	changed, err = storage.AutoApprove(ctx, id, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStorage_FindReminderDue(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	cutoff := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	approvedAt := cutoff.Add(-14 * 24 * time.Hour)

	// Напоминание не отправлялось вовсе
	neverUID := factory.CreateUser(t, uniqueEmail("never"), "Never Reminded")
	neverID := factory.CreateCompleteApplication(t, neverUID)
	factory.SetSubmitted(t, neverID, approvedAt)
	factory.SetApproved(t, neverID, approvedAt, nil)

	// Прошлое напоминание достаточно давно
	staleAt := cutoff.Add(-time.Hour)
	staleUID := factory.CreateUser(t, uniqueEmail("stale"), "Stale Reminder")
	staleID := factory.CreateCompleteApplication(t, staleUID)
	factory.SetSubmitted(t, staleID, approvedAt)
	factory.SetApproved(t, staleID, approvedAt, &staleAt)

	// Напоминание было недавно
	recentAt := cutoff.Add(time.Hour)
	recentUID := factory.CreateUser(t, uniqueEmail("recent"), "Recent Reminder")
	recentID := factory.CreateCompleteApplication(t, recentUID)
	factory.SetSubmitted(t, recentID, approvedAt)
	factory.SetApproved(t, recentID, approvedAt, &recentAt)

	// Не одобрена - напоминаний нет
	pendingUID := factory.CreateUser(t, uniqueEmail("pending"), "Still Pending")
	pendingID := factory.CreateCompleteApplication(t, pendingUID)
	factory.SetSubmitted(t, pendingID, approvedAt)

	rows, err := storage.FindReminderDue(ctx, cutoff)
	require.NoError(t, err)

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.ElementsMatch(t, []int{neverID, staleID}, ids)
}

func TestStorage_TouchReminder(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	id := factory.CreateCompleteApplication(t, userUID)
	now := time.Now().UTC()
	factory.SetSubmitted(t, id, now)
	factory.SetApproved(t, id, now, nil)

	require.NoError(t, storage.TouchReminder(ctx, id, now))

	app, err := storage.GetApplicationByUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, app.LastReminderSent)

	assert.ErrorIs(t, storage.TouchReminder(ctx, 999999, now), ErrNotFound)
}

func TestStorage_ListForAdmin(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	aliceUID := factory.CreateUser(t, "alice@example.com", "Alice Doe")
	aliceID := factory.CreateCompleteApplication(t, aliceUID)
	factory.SetSubmitted(t, aliceID, time.Now().UTC())

	bobUID := factory.CreateUser(t, "bob@example.com", "Bob Roe")
	bobID := factory.CreateApplication(t, bobUID, models.PassportNeeds)

	t.Run("filters by email substring", func(t *testing.T) {
		rows, total, err := storage.ListForAdmin(ctx, models.ListFilter{
			EmailLike: "alice", Page: 1, PerPage: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "Alice Doe", rows[0].FullName)
	})

	t.Run("filters by submitted flag", func(t *testing.T) {
		submitted := false
		rows, total, err := storage.ListForAdmin(ctx, models.ListFilter{
			Submitted: &submitted, Page: 1, PerPage: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, bobID, rows[0].ID)
	})

	t.Run("unknown sort key falls back to id ascending", func(t *testing.T) {
		rows, total, err := storage.ListForAdmin(ctx, models.ListFilter{
			SortKey: "'; DROP TABLE applications; --", Page: 1, PerPage: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, rows, 2)
		assert.Equal(t, aliceID, rows[0].ID)
		assert.Equal(t, bobID, rows[1].ID)
	})

	t.Run("paginates and keeps the overall total", func(t *testing.T) {
		rows, total, err := storage.ListForAdmin(ctx, models.ListFilter{
			Page: 2, PerPage: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, rows, 1)
		assert.Equal(t, bobID, rows[0].ID)
	})
}

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	user := models.User{
		Email:        uniqueEmail("alice"),
		FullName:     "Alice Doe",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}

	uid, err := storage.RegisterUser(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	// Повторная регистрация той же почты
	_, err = storage.RegisterUser(ctx, user)
	assert.ErrorIs(t, err, ErrConflict)

	found, err := storage.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, uid, found.UID)
	assert.Equal(t, models.RoleUser, found.Role)
}

func TestStorage_DeleteUser_CascadesApplication(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	userUID := factory.CreateUser(t, uniqueEmail("alice"), "Alice Doe")
	factory.CreateCompleteApplication(t, userUID)

	require.NoError(t, storage.DeleteUser(ctx, userUID))

	_, err := storage.GetApplicationByUser(ctx, userUID)
	assert.ErrorIs(t, err, ErrNotFound)
}
