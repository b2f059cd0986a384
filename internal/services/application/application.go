// Package application содержит бизнес-логику пошаговой анкеты:
// сохранение шагов, финальную отправку и сводку для кабинета заявителя.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workabroad/application-portal/internal/lib/regnumber"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/services/progress"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// Ошибки уровня сервиса, внешний слой отображает их в коды ответов.
var (
	// ErrNoApplication у пользователя еще нет заявки.
	ErrNoApplication = errors.New("application not found")
	// ErrAlreadySubmitted отправленная заявка неизменяема для владельца.
	ErrAlreadySubmitted = errors.New("application already submitted")
	// ErrIncomplete отправка возможна только для полностью заполненной анкеты.
	ErrIncomplete = errors.New("application is not complete")
)

// ApplicationRepository определяет методы хранилища для работы с анкетой.
type ApplicationRepository interface {
	// GetApplicationByUser возвращает заявку пользователя.
	GetApplicationByUser(ctx context.Context, userUID string) (*models.Application, error)
	// UpsertStep1 создает заявку или обновляет статус паспорта.
	UpsertStep1(ctx context.Context, userUID, passportStatus string) (int, error)
	// UpdateStep2 сохраняет личные данные.
	UpdateStep2(ctx context.Context, userUID string, phone string, dateOfBirth time.Time,
		education, occupation, maritalStatus string) error
	// UpdateStep3 сохраняет имена документов.
	UpdateStep3(ctx context.Context, userUID, cvFilename, idFilename, certFilename string) error
	// MarkSubmitted отмечает заявку отправленной.
	MarkSubmitted(ctx context.Context, userUID string, now time.Time) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// DashboardCacheKey ключ кешированной сводки кабинета пользователя.
// Любое изменение заявки, включая одобрение из административного
// кабинета и фоновых задач, сбрасывает кеш по этому ключу.
func DashboardCacheKey(userUID string) string {
	return fmt.Sprintf("application:%s", userUID)
}

// Dashboard сводка кабинета заявителя.
type Dashboard struct {
	HasApplication     bool     `json:"has_application"`
	ProgressPercent    int      `json:"progress_percent"`
	MissingSteps       []string `json:"missing_steps,omitempty"`
	NextRoute          string   `json:"next_route"`
	Submitted          bool     `json:"submitted"`
	Approved           bool     `json:"approved"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
}

// ApplicationService реализует бизнес-логику анкеты с кешированием сводки.
type ApplicationService struct {
	repo  ApplicationRepository
	cache Cache
	log   *slog.Logger
}

// NewApplicationService создает новый экземпляр ApplicationService.
func NewApplicationService(repo ApplicationRepository, cache Cache, log *slog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// SaveStep1 сохраняет статус паспорта, создавая заявку при первом обращении.
// Возвращает адрес следующего шага: для needs_passport это страница
// с вариантами оформления паспорта, анкета при этом не блокируется.
func (s *ApplicationService) SaveStep1(ctx context.Context, userUID string, req models.DummyStep1) (string, error) {
	app, err := s.getEditable(ctx, userUID, true)
	if err != nil {
		return "", err
	}
	id, err := s.repo.UpsertStep1(ctx, userUID, req.PassportStatus)
	if err != nil {
		// Заявка могла быть отправлена между чтением и записью:
		// хранилище отклоняет обновление атомарно.
		if errors.Is(err, repository.ErrConflict) {
			return "", ErrAlreadySubmitted
		}
		return "", err
	}
	if app == nil {
		s.log.Info("started new application", slog.Int("id", id), slog.String("user", userUID))
	}
	s.invalidateDashboard(userUID)

	if req.PassportStatus == models.PassportNeeds {
		return "/application/passport-options", nil
	}
	return "/application/step2", nil
}

// SaveStep2 сохраняет личные данные второго шага.
func (s *ApplicationService) SaveStep2(ctx context.Context, userUID string, req models.DummyStep2) error {
	if _, err := s.getEditable(ctx, userUID, false); err != nil {
		return err
	}
	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return fmt.Errorf("invalid date of birth: %w", err)
	}
	if err := s.repo.UpdateStep2(ctx, userUID, req.PhoneNumber, dateOfBirth,
		req.EducationLevel, req.Occupation, req.MaritalStatus); err != nil {
		return err
	}
	s.invalidateDashboard(userUID)
	return nil
}

// SaveStep3 сохраняет имена загруженных документов.
func (s *ApplicationService) SaveStep3(ctx context.Context, userUID string, req models.DummyStep3) error {
	if _, err := s.getEditable(ctx, userUID, false); err != nil {
		return err
	}
	if err := s.repo.UpdateStep3(ctx, userUID, req.CVFilename, req.IDFilename, req.CertFilename); err != nil {
		return err
	}
	s.invalidateDashboard(userUID)
	return nil
}

// Submit отправляет заявку. Неполная анкета отклоняется с ErrIncomplete
// и списком оставшихся шагов, повторная отправка - с ErrAlreadySubmitted.
func (s *ApplicationService) Submit(ctx context.Context, userUID string) ([]string, error) {
	app, err := s.getEditable(ctx, userUID, false)
	if err != nil {
		return nil, err
	}
	if !progress.IsComplete(app) {
		return progress.MissingSteps(app), ErrIncomplete
	}
	if err := s.repo.MarkSubmitted(ctx, userUID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadySubmitted
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoApplication
		}
		return nil, err
	}
	s.log.Info("application submitted", slog.String("user", userUID))
	s.invalidateDashboard(userUID)
	return nil, nil
}

// Summary возвращает заявку пользователя для страницы сводки.
func (s *ApplicationService) Summary(ctx context.Context, userUID string) (*models.Application, error) {
	app, err := s.repo.GetApplicationByUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoApplication
		}
		return nil, err
	}
	return app, nil
}

// GetDashboard собирает сводку кабинета: прогресс, оставшиеся шаги
// и адрес следующего действия. Сводка кешируется и сбрасывается
// любым изменением заявки.
func (s *ApplicationService) GetDashboard(ctx context.Context, userUID string) (*Dashboard, error) {
	cacheKey := DashboardCacheKey(userUID)
	var cached Dashboard
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read dashboard cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	app, err := s.repo.GetApplicationByUser(ctx, userUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	state := progress.Evaluate(app)
	dashboard := &Dashboard{
		HasApplication:  app != nil,
		ProgressPercent: progress.Percent(app),
		MissingSteps:    progress.MissingSteps(app),
		NextRoute:       progress.NextRoute(state),
	}
	if app != nil {
		dashboard.Submitted = app.Submitted
		dashboard.Approved = app.Approved
		if app.Approved && app.ApprovedAt != nil {
			dashboard.RegistrationNumber = regnumber.Format(app.ID, *app.ApprovedAt)
		}
	}

	if err := s.cache.Set(cacheKey, dashboard, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache dashboard", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return dashboard, nil
}

// getEditable возвращает заявку, проверяя что она существует (если не
// allowMissing) и еще не отправлена.
func (s *ApplicationService) getEditable(ctx context.Context, userUID string, allowMissing bool) (*models.Application, error) {
	app, err := s.repo.GetApplicationByUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if allowMissing {
				return nil, nil
			}
			return nil, ErrNoApplication
		}
		return nil, err
	}
	if app.Submitted {
		return nil, ErrAlreadySubmitted
	}
	return app, nil
}

func (s *ApplicationService) invalidateDashboard(userUID string) {
	cacheKey := DashboardCacheKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}
