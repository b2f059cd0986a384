// Package scheduler реализует фоновые задачи портала: автоматическое
// одобрение отправленных заявок после суточной выдержки и рассылку
// напоминаний. Планировщик - явно принадлежащий приложению объект:
// Run запускает тикеры, отмена контекста их останавливает.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/workabroad/application-portal/internal/config"
	"github.com/workabroad/application-portal/internal/lib/regnumber"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/services/application"
	"github.com/workabroad/application-portal/internal/services/progress"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

var (
	approvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_auto_approved_total",
		Help: "Applications approved by the auto-approval job.",
	})
	remindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_reminders_sent_total",
		Help: "Reminder emails sent by the reminder job, by category.",
	}, []string{"category"})
	jobErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_job_errors_total",
		Help: "Per-record job errors, by job.",
	}, []string{"job"})
)

// ApplicationRepository описывает выборки и переходы состояния,
// нужные фоновым задачам.
type ApplicationRepository interface {
	FindAutoApprovable(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error)
	AutoApprove(ctx context.Context, id int, now time.Time) (bool, error)
	FindReminderDue(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error)
	TouchReminder(ctx context.Context, id int, now time.Time) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetApplicationByUser(ctx context.Context, userUID string) (*models.Application, error)
}

// Sender описывает интерфейс диспетчера уведомлений.
type Sender interface {
	SendAcceptanceLetter(email, fullName, registrationNumber string, isReminder bool) error
	SendIncompleteNudge(email, fullName string, missingSteps []string) error
	SendStartNudge(email, fullName string) error
}

// Cache сбрасывает кешированную сводку кабинета после автоодобрения,
// чтобы заявитель увидел одобрение сразу, а не по истечении TTL.
type Cache interface {
	Invalidate(key string) error
}

// ReminderStats счетчики одного прогона напоминательной задачи.
type ReminderStats struct {
	NoApplication int
	Incomplete    int
	Approved      int
	Errors        int
}

// SchedulerService владеет тикерами обеих задач.
type SchedulerService struct {
	repo   ApplicationRepository
	sender Sender
	cache  Cache
	log    *slog.Logger
	cfg    config.Scheduler
	now    func() time.Time

	// Неблокирующие маркеры запуска: перекрывающийся тик
	// пропускается, а не дублируется.
	approvalMu sync.Mutex
	reminderMu sync.Mutex
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ApplicationRepository, sender Sender, cache Cache, log *slog.Logger, cfg config.Scheduler) *SchedulerService {
	return &SchedulerService{
		repo:   repo,
		sender: sender,
		cache:  cache,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run запускает обе задачи на собственных интервалах. Первый прогон
// выполняется сразу. Возврат - после отмены контекста.
func (s *SchedulerService) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, s.cfg.ApprovalInterval, s.tickAutoApproval)
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, s.cfg.ReminderInterval, s.tickReminders)
	}()
	wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *SchedulerService) loop(ctx context.Context, interval time.Duration, tick func(ctx context.Context)) {
	tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

func (s *SchedulerService) tickAutoApproval(ctx context.Context) {
	if !s.approvalMu.TryLock() {
		s.log.Warn("auto-approval tick skipped, previous run still in progress")
		return
	}
	defer s.approvalMu.Unlock()

	count, err := s.RunAutoApproval(ctx)
	if err != nil {
		s.log.Error("auto-approval run failed", sl.Err(err))
		return
	}
	s.log.Info("auto-approval run completed", slog.Int("approved", count))
}

func (s *SchedulerService) tickReminders(ctx context.Context) {
	if !s.reminderMu.TryLock() {
		s.log.Warn("reminder tick skipped, previous run still in progress")
		return
	}
	defer s.reminderMu.Unlock()

	stats, err := s.RunReminders(ctx)
	if err != nil {
		s.log.Error("reminder run failed", sl.Err(err))
		return
	}
	s.log.Info("reminder run completed",
		slog.Int("no_application", stats.NoApplication),
		slog.Int("incomplete", stats.Incomplete),
		slog.Int("approved", stats.Approved),
		slog.Int("errors", stats.Errors))
}

// RunAutoApproval одобряет заявки, отправленные не позже чем
// ApprovalDelay назад (граница включающая). Одобрение фиксируется
// до отправки письма: заявка - источник истины, письмо - лучшая
// попытка, неудача доберется следующим еженедельным напоминанием.
// Ошибка одной записи не прерывает пакет. Возвращает число заявок,
// одобренных и успешно уведомленных.
func (s *SchedulerService) RunAutoApproval(ctx context.Context) (int, error) {
	now := s.now()
	rows, err := s.repo.FindAutoApprovable(ctx, now.Add(-s.cfg.ApprovalDelay))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		approved, err := s.repo.AutoApprove(ctx, row.ID, now)
		if err != nil {
			s.log.Error("failed to approve application", slog.Int("id", row.ID), sl.Err(err))
			jobErrorsTotal.WithLabelValues("auto_approval").Inc()
			continue
		}
		if !approved {
			// Успела одобриться параллельно, письмо не наше.
			continue
		}
		approvedTotal.Inc()
		s.invalidateDashboard(row.UserUID)

		regNumber := regnumber.Format(row.ID, now)
		if err := s.sender.SendAcceptanceLetter(row.Email, row.FullName, regNumber, false); err != nil {
			s.log.Error("approved but failed to send acceptance email",
				slog.Int("id", row.ID), slog.String("email", row.Email), sl.Err(err))
			jobErrorsTotal.WithLabelValues("auto_approval").Inc()
			continue
		}
		s.log.Info("sent acceptance email", slog.String("email", row.Email))
		count++
	}
	return count, nil
}

// RunReminders выполняет один прогон напоминаний. Каждый тик проходит
// по всем пользователям заново: без записи - приглашение начать,
// с незавершенной заявкой - список оставшихся шагов. Отдельно, не
// по-пользовательски, выбираются одобренные заявки со стажем
// напоминания не меньше ReminderPeriod; отметка времени фиксируется
// только после подтвержденной отправки.
func (s *SchedulerService) RunReminders(ctx context.Context) (ReminderStats, error) {
	var stats ReminderStats
	now := s.now()

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return stats, err
	}
	for _, user := range users {
		app, err := s.repo.GetApplicationByUser(ctx, user.UID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.log.Error("failed to read application", slog.String("user", user.UID), sl.Err(err))
				stats.Errors++
				jobErrorsTotal.WithLabelValues("reminder").Inc()
				continue
			}
			if err := s.sender.SendStartNudge(user.Email, user.FullName); err != nil {
				s.log.Error("failed to send start nudge", slog.String("email", user.Email), sl.Err(err))
				stats.Errors++
				jobErrorsTotal.WithLabelValues("reminder").Inc()
				continue
			}
			stats.NoApplication++
			remindersTotal.WithLabelValues("no_application").Inc()
			continue
		}

		if progress.Evaluate(app) == progress.StateComplete {
			continue
		}
		missing := progress.MissingSteps(app)
		if err := s.sender.SendIncompleteNudge(user.Email, user.FullName, missing); err != nil {
			s.log.Error("failed to send incomplete nudge", slog.String("email", user.Email), sl.Err(err))
			stats.Errors++
			jobErrorsTotal.WithLabelValues("reminder").Inc()
			continue
		}
		stats.Incomplete++
		remindersTotal.WithLabelValues("incomplete").Inc()
	}

	rows, err := s.repo.FindReminderDue(ctx, now.Add(-s.cfg.ReminderPeriod))
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		regNumber := regnumber.Format(row.ID, now)
		if err := s.sender.SendAcceptanceLetter(row.Email, row.FullName, regNumber, true); err != nil {
			s.log.Error("failed to send approval reminder",
				slog.Int("id", row.ID), slog.String("email", row.Email), sl.Err(err))
			stats.Errors++
			jobErrorsTotal.WithLabelValues("reminder").Inc()
			continue
		}
		if err := s.repo.TouchReminder(ctx, row.ID, now); err != nil {
			s.log.Error("sent reminder but failed to record it",
				slog.Int("id", row.ID), sl.Err(err))
			stats.Errors++
			jobErrorsTotal.WithLabelValues("reminder").Inc()
			continue
		}
		stats.Approved++
		remindersTotal.WithLabelValues("approved").Inc()
	}

	return stats, nil
}

func (s *SchedulerService) invalidateDashboard(userUID string) {
	key := application.DashboardCacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", slog.String("key", key), sl.Err(err))
	}
}
