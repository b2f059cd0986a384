package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workabroad/application-portal/internal/config"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindAutoApprovable(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApplicationRow), args.Error(1)
}

func (m *MockRepository) AutoApprove(ctx context.Context, id int, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) FindReminderDue(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApplicationRow), args.Error(1)
}

func (m *MockRepository) TouchReminder(ctx context.Context, id int, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) GetApplicationByUser(ctx context.Context, userUID string) (*models.Application, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendAcceptanceLetter(email, fullName, registrationNumber string, isReminder bool) error {
	args := m.Called(email, fullName, registrationNumber, isReminder)
	return args.Error(0)
}

func (m *MockSender) SendIncompleteNudge(email, fullName string, missingSteps []string) error {
	args := m.Called(email, fullName, missingSteps)
	return args.Error(0)
}

func (m *MockSender) SendStartNudge(email, fullName string) error {
	args := m.Called(email, fullName)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newQuietCache() *MockCache {
	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything).Return(nil).Maybe()
	return cache
}

func newTestService(repo *MockRepository, sender *MockSender, now time.Time) *SchedulerService {
	return newTestServiceWithCache(repo, sender, newQuietCache(), now)
}

func newTestServiceWithCache(repo *MockRepository, sender *MockSender, cache *MockCache, now time.Time) *SchedulerService {
	cfg := config.Scheduler{
		ApprovalInterval: time.Hour,
		ReminderInterval: time.Hour,
		ApprovalDelay:    24 * time.Hour,
		ReminderPeriod:   168 * time.Hour,
	}
	s := NewSchedulerService(repo, sender, cache, newNoopLogger(), cfg)
	s.now = func() time.Time { return now }
	return s
}

func makeRow(id int, email, fullName string) *models.ApplicationRow {
	row := &models.ApplicationRow{FullName: fullName, Email: email}
	row.ID = id
	row.UserUID = fmt.Sprintf("uid-%d", id)
	return row
}

func TestRunAutoApproval(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)
	regNumber := fmt.Sprintf("%d%06d", now.Year(), 7)

	tests := []struct {
		name       string
		setupMocks func(r *MockRepository, s *MockSender)
		wantCount  int
		wantErr    bool
	}{
		{
			name: "approves and sends acceptance letter",
			setupMocks: func(r *MockRepository, s *MockSender) {
				r.On("FindAutoApprovable", mock.Anything, cutoff).
					Return([]*models.ApplicationRow{makeRow(7, "a@b.c", "Alice Doe")}, nil).Once()
				r.On("AutoApprove", mock.Anything, 7, now).Return(true, nil).Once()
				s.On("SendAcceptanceLetter", "a@b.c", "Alice Doe", regNumber, false).Return(nil).Once()
			},
			wantCount: 1,
		},
		{
			name: "email failure keeps the approval",
			setupMocks: func(r *MockRepository, s *MockSender) {
				r.On("FindAutoApprovable", mock.Anything, cutoff).
					Return([]*models.ApplicationRow{makeRow(7, "a@b.c", "Alice Doe")}, nil).Once()
				r.On("AutoApprove", mock.Anything, 7, now).Return(true, nil).Once()
				s.On("SendAcceptanceLetter", "a@b.c", "Alice Doe", regNumber, false).
					Return(errors.New("smtp down")).Once()
			},
			wantCount: 0,
		},
		{
			name: "skips rows approved concurrently",
			setupMocks: func(r *MockRepository, s *MockSender) {
				r.On("FindAutoApprovable", mock.Anything, cutoff).
					Return([]*models.ApplicationRow{makeRow(7, "a@b.c", "Alice Doe")}, nil).Once()
				r.On("AutoApprove", mock.Anything, 7, now).Return(false, nil).Once()
			},
			wantCount: 0,
		},
		{
			name: "one bad row does not stop the batch",
			setupMocks: func(r *MockRepository, s *MockSender) {
				r.On("FindAutoApprovable", mock.Anything, cutoff).
					Return([]*models.ApplicationRow{
						makeRow(7, "a@b.c", "Alice Doe"),
						makeRow(8, "b@b.c", "Bob Roe"),
					}, nil).Once()
				r.On("AutoApprove", mock.Anything, 7, now).Return(false, errors.New("db error")).Once()
				r.On("AutoApprove", mock.Anything, 8, now).Return(true, nil).Once()
				s.On("SendAcceptanceLetter", "b@b.c", "Bob Roe", fmt.Sprintf("%d%06d", now.Year(), 8), false).
					Return(nil).Once()
			},
			wantCount: 1,
		},
		{
			name: "query failure aborts the run",
			setupMocks: func(r *MockRepository, _ *MockSender) {
				r.On("FindAutoApprovable", mock.Anything, cutoff).
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			sender := new(MockSender)
			tt.setupMocks(repo, sender)

			s := newTestService(repo, sender, now)
			count, err := s.RunAutoApproval(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCount, count)
			}
			repo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}

	t.Run("approval drops the cached dashboard", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		cache := new(MockCache)

		repo.On("FindAutoApprovable", mock.Anything, cutoff).
			Return([]*models.ApplicationRow{makeRow(7, "a@b.c", "Alice Doe")}, nil).Once()
		repo.On("AutoApprove", mock.Anything, 7, now).Return(true, nil).Once()
		cache.On("Invalidate", "application:uid-7").Return(nil).Once()
		sender.On("SendAcceptanceLetter", "a@b.c", "Alice Doe", regNumber, false).Return(nil).Once()

		s := newTestServiceWithCache(repo, sender, cache, now)
		count, err := s.RunAutoApproval(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
		cache.AssertExpectations(t)
	})
}

func TestRunReminders(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reminderCutoff := now.Add(-168 * time.Hour)
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	incompleteApp := &models.Application{
		ID:             2,
		UserUID:        "uid-2",
		PassportStatus: models.PassportHas,
	}
	submittedApp := &models.Application{
		ID:             3,
		UserUID:        "uid-3",
		PassportStatus: models.PassportHas,
		PhoneNumber:    "+100",
		DateOfBirth:    &dob,
		EducationLevel: "bachelor",
		Occupation:     "nurse",
		MaritalStatus:  "married",
		CVFilename:     "cv.pdf",
		IDFilename:     "id.pdf",
		CertFilename:   "cert.pdf",
		Submitted:      true,
	}

	t.Run("every user is rechecked each run", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)

		repo.On("ListUsers", mock.Anything).Return([]*models.User{
			{UID: "uid-1", Email: "one@e.x", FullName: "One"},
			{UID: "uid-2", Email: "two@e.x", FullName: "Two"},
			{UID: "uid-3", Email: "three@e.x", FullName: "Three"},
		}, nil).Once()
		repo.On("GetApplicationByUser", mock.Anything, "uid-1").
			Return(nil, fmt.Errorf("storage.GetApplicationByUser: %w", repository.ErrNotFound)).Once()
		repo.On("GetApplicationByUser", mock.Anything, "uid-2").Return(incompleteApp, nil).Once()
		repo.On("GetApplicationByUser", mock.Anything, "uid-3").Return(submittedApp, nil).Once()

		sender.On("SendStartNudge", "one@e.x", "One").Return(nil).Once()
		sender.On("SendIncompleteNudge", "two@e.x", "Two", []string{
			"Step 2: Personal Details",
			"Step 3: Documents",
			"Step 4: Final Submission",
		}).Return(nil).Once()

		approvedRow := makeRow(3, "three@e.x", "Three")
		repo.On("FindReminderDue", mock.Anything, reminderCutoff).
			Return([]*models.ApplicationRow{approvedRow}, nil).Once()
		sender.On("SendAcceptanceLetter", "three@e.x", "Three", fmt.Sprintf("%d%06d", now.Year(), 3), true).
			Return(nil).Once()
		repo.On("TouchReminder", mock.Anything, 3, now).Return(nil).Once()

		s := newTestService(repo, sender, now)
		stats, err := s.RunReminders(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, ReminderStats{NoApplication: 1, Incomplete: 1, Approved: 1}, stats)
		repo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("reminder timestamp is recorded only after a delivered email", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)

		repo.On("ListUsers", mock.Anything).Return([]*models.User{}, nil).Once()
		repo.On("FindReminderDue", mock.Anything, reminderCutoff).
			Return([]*models.ApplicationRow{makeRow(3, "three@e.x", "Three")}, nil).Once()
		sender.On("SendAcceptanceLetter", "three@e.x", "Three", mock.Anything, true).
			Return(errors.New("smtp down")).Once()

		s := newTestService(repo, sender, now)
		stats, err := s.RunReminders(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, ReminderStats{Errors: 1}, stats)
		repo.AssertNotCalled(t, "TouchReminder", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("user listing failure aborts the run", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		repo.On("ListUsers", mock.Anything).Return(nil, errors.New("db down")).Once()

		s := newTestService(repo, sender, now)
		_, err := s.RunReminders(context.Background())
		assert.Error(t, err)
	})
}

func TestTickSkipsOverlappingRun(t *testing.T) {
	repo := new(MockRepository)
	sender := new(MockSender)
	s := newTestService(repo, sender, time.Now())

	s.approvalMu.Lock()
	defer s.approvalMu.Unlock()
	s.tickAutoApproval(context.Background())

	s.reminderMu.Lock()
	defer s.reminderMu.Unlock()
	s.tickReminders(context.Background())

	repo.AssertNotCalled(t, "FindAutoApprovable", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ListUsers", mock.Anything)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := new(MockRepository)
	sender := new(MockSender)

	repo.On("FindAutoApprovable", mock.Anything, mock.Anything).Return([]*models.ApplicationRow{}, nil)
	repo.On("ListUsers", mock.Anything).Return([]*models.User{}, nil)
	repo.On("FindReminderDue", mock.Anything, mock.Anything).Return([]*models.ApplicationRow{}, nil)

	s := newTestService(repo, sender, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
