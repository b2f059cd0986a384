// Package admin содержит бизнес-логику административного кабинета:
// просмотр и выгрузку заявок, ручное одобрение, письма и управление ролями.
package admin

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/workabroad/application-portal/internal/lib/regnumber"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/services/application"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var (
	// ErrAlreadyApproved повторное одобрение не делает ничего.
	ErrAlreadyApproved = errors.New("application already approved")
	// ErrNotApproved письмо о зачислении доступно только одобренной заявке.
	ErrNotApproved = errors.New("application is not approved")
	// ErrSelfChange администратор не может снять роль или удалить сам себя.
	ErrSelfChange = errors.New("cannot change own account")
)

// ApplicationRepository определяет методы хранилища для кабинета.
type ApplicationRepository interface {
	ListForAdmin(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, int, error)
	ListForExport(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, error)
	GetApplicationRow(ctx context.Context, id int) (*models.ApplicationRow, error)
	ApproveApplication(ctx context.Context, id int, now time.Time) (bool, error)
	RejectApplication(ctx context.Context, id int) error
	TouchReminder(ctx context.Context, id int, now time.Time) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetUserRole(ctx context.Context, uid, role string) error
	DeleteUser(ctx context.Context, uid string) error
}

// Sender отправляет письма заявителям.
type Sender interface {
	SendAcceptanceLetter(email, fullName, registrationNumber string, isReminder bool) error
}

// Cache сбрасывает кешированную сводку кабинета заявителя,
// чтобы одобрение отражалось в кабинете сразу, а не по истечении TTL.
type Cache interface {
	Invalidate(key string) error
}

// AdminService реализует операции административного кабинета.
type AdminService struct {
	repo   ApplicationRepository
	sender Sender
	cache  Cache
	log    *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo ApplicationRepository, sender Sender, cache Cache, log *slog.Logger) *AdminService {
	return &AdminService{
		repo:   repo,
		sender: sender,
		cache:  cache,
		log:    log,
	}
}

// List возвращает страницу заявок под фильтрами и общее количество строк.
func (s *AdminService) List(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, int, error) {
	normalize(&filter)
	return s.repo.ListForAdmin(ctx, filter)
}

// View возвращает заявку вместе с данными заявителя.
func (s *AdminService) View(ctx context.Context, id int) (*models.ApplicationRow, error) {
	return s.repo.GetApplicationRow(ctx, id)
}

// ExportCSV выгружает все заявки под фильтрами в CSV. Формат строк
// закреплен: Yes/No для логических полей, статус паспорта с заглавных букв.
func (s *AdminService) ExportCSV(ctx context.Context, filter models.ListFilter, w io.Writer) error {
	normalize(&filter)
	rows, err := s.repo.ListForExport(ctx, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Applicant Name", "Email", "Passport Status", "Submitted", "Approved"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.FullName,
			row.Email,
			formatPassportStatus(row.PassportStatus),
			yesNo(row.Submitted),
			yesNo(row.Approved),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Approve одобряет заявку вручную. Одобрение фиксируется до отправки
// письма, неудача отправки только логируется. Возвращает регистрационный
// номер одобренной заявки.
func (s *AdminService) Approve(ctx context.Context, id int) (string, error) {
	row, err := s.repo.GetApplicationRow(ctx, id)
	if err != nil {
		return "", err
	}

	now := time.Now()
	changed, err := s.repo.ApproveApplication(ctx, id, now)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", ErrAlreadyApproved
	}
	s.log.Info("application approved", slog.Int("id", id))
	s.invalidateDashboard(row.UserUID)

	regNumber := regnumber.Format(id, now)
	if err := s.sender.SendAcceptanceLetter(row.Email, row.FullName, regNumber, false); err != nil {
		s.log.Error("approved but failed to send acceptance email",
			slog.Int("id", id), slog.String("email", row.Email), sl.Err(err))
	}
	return regNumber, nil
}

// Reject снимает одобрение заявки.
func (s *AdminService) Reject(ctx context.Context, id int) error {
	row, err := s.repo.GetApplicationRow(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.RejectApplication(ctx, id); err != nil {
		return err
	}
	s.log.Info("application rejected", slog.Int("id", id))
	s.invalidateDashboard(row.UserUID)
	return nil
}

// SendAcceptance отправляет письмо о зачислении вручную. Для напоминания
// отметка времени фиксируется только после подтвержденной отправки.
// Регистрационный номер, как и в фоновых задачах, берет год на момент
// отправки письма.
func (s *AdminService) SendAcceptance(ctx context.Context, id int, isReminder bool) error {
	row, err := s.repo.GetApplicationRow(ctx, id)
	if err != nil {
		return err
	}
	if !row.Approved {
		return ErrNotApproved
	}

	regNumber := regnumber.Format(id, time.Now())
	if err := s.sender.SendAcceptanceLetter(row.Email, row.FullName, regNumber, isReminder); err != nil {
		return err
	}
	if isReminder {
		if err := s.repo.TouchReminder(ctx, id, time.Now()); err != nil {
			s.log.Error("sent reminder but failed to record it", slog.Int("id", id), sl.Err(err))
		}
	}
	return nil
}

// ListUsers возвращает всех пользователей портала.
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Promote выдает пользователю роль администратора.
func (s *AdminService) Promote(ctx context.Context, uid string) error {
	if err := s.repo.SetUserRole(ctx, uid, models.RoleAdmin); err != nil {
		return err
	}
	s.log.Info("user promoted to admin", slog.String("uid", uid))
	return nil
}

// Demote снимает роль администратора. Снять роль с самого себя нельзя,
// иначе портал может остаться без администраторов.
func (s *AdminService) Demote(ctx context.Context, actorUID, uid string) error {
	if actorUID == uid {
		return ErrSelfChange
	}
	if err := s.repo.SetUserRole(ctx, uid, models.RoleUser); err != nil {
		return err
	}
	s.log.Info("user demoted", slog.String("uid", uid))
	return nil
}

// DeleteUser удаляет пользователя вместе с его заявкой. Удалить
// собственную учетную запись из кабинета нельзя.
func (s *AdminService) DeleteUser(ctx context.Context, actorUID, uid string) error {
	if actorUID == uid {
		return ErrSelfChange
	}
	if err := s.repo.DeleteUser(ctx, uid); err != nil {
		return err
	}
	s.log.Info("user deleted", slog.String("uid", uid))
	s.invalidateDashboard(uid)
	return nil
}

func (s *AdminService) invalidateDashboard(userUID string) {
	key := application.DashboardCacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", slog.String("key", key), sl.Err(err))
	}
}

func normalize(filter *models.ListFilter) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
}

// formatPassportStatus превращает has_passport в Has_passport:
// заглавной становится только первая буква, подчеркивания остаются.
func formatPassportStatus(status string) string {
	if status == "" {
		return status
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
