package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workabroad/application-portal/internal/models"
)

const applicationColumns = `a.id, a.user_uid, a.passport_status, a.phone_number,
			      a.date_of_birth, a.education_level, a.occupation, a.marital_status,
			      a.cv_filename, a.id_filename, a.cert_filename,
			      a.submitted, a.submitted_at, a.approved, a.approved_at, a.last_reminder_sent`

// allowedSortColumns белый список ключей сортировки административного
// списка. Неизвестный ключ откатывается на id.
var allowedSortColumns = map[string]string{
	"id":              "a.id",
	"name":            "u.full_name",
	"email":           "u.email",
	"passport_status": "a.passport_status",
	"submitted":       "a.submitted",
	"approved":        "a.approved",
}

// GetApplicationByUser возвращает заявку пользователя или ErrNotFound.
func (s *Storage) GetApplicationByUser(ctx context.Context, userUID string) (*models.Application, error) {
	const op = "storage.GetApplicationByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + applicationColumns + `
			  FROM applications a
			  WHERE a.user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	app, err := scanApplication(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

// GetApplicationRow возвращает заявку по ID вместе с данными заявителя.
func (s *Storage) GetApplicationRow(ctx context.Context, id int) (*models.ApplicationRow, error) {
	const op = "storage.GetApplicationRow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + applicationColumns + `, u.full_name, u.email
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid
			  WHERE a.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	app, err := scanApplicationRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

// UpsertStep1 создает заявку первым шагом или обновляет статус паспорта
// существующей. Уникальность user_uid закреплена в схеме, поэтому вторая
// заявка на того же пользователя невозможна в принципе. Отправленная
// заявка не обновляется: условие на DO UPDATE оставляет RETURNING
// без строки, что возвращается как ErrConflict.
func (s *Storage) UpsertStep1(ctx context.Context, userUID, passportStatus string) (int, error) {
	const op = "storage.UpsertStep1"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO applications (user_uid, passport_status)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid) DO UPDATE SET passport_status = EXCLUDED.passport_status
			  WHERE NOT applications.submitted
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, userUID, passportStatus).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrConflict)
		}
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateStep2 сохраняет личные данные второго шага.
func (s *Storage) UpdateStep2(ctx context.Context, userUID string, phone string, dateOfBirth time.Time,
	education, occupation, maritalStatus string) error {
	const op = "storage.UpdateStep2"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET phone_number = $1, date_of_birth = $2, education_level = $3,
			      occupation = $4, marital_status = $5
			  WHERE user_uid = $6 AND NOT submitted`
	return s.execExpectingRow(ctx, op, query, phone, dateOfBirth, education, occupation, maritalStatus, userUID)
}

// UpdateStep3 сохраняет имена загруженных документов.
func (s *Storage) UpdateStep3(ctx context.Context, userUID, cvFilename, idFilename, certFilename string) error {
	const op = "storage.UpdateStep3"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET cv_filename = $1, id_filename = $2, cert_filename = $3
			  WHERE user_uid = $4 AND NOT submitted`
	return s.execExpectingRow(ctx, op, query, cvFilename, idFilename, certFilename, userUID)
}

// MarkSubmitted отмечает заявку отправленной. Переход одноразовый:
// повторная отправка возвращает ErrConflict, отсутствие заявки - ErrNotFound.
func (s *Storage) MarkSubmitted(ctx context.Context, userUID string, now time.Time) error {
	const op = "storage.MarkSubmitted"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET submitted = TRUE, submitted_at = $1
			  WHERE user_uid = $2 AND NOT submitted`
	res, err := s.DB.ExecContext(ctx, query, now, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		var exists bool
		if err = s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM applications WHERE user_uid = $1)`, userUID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ApproveApplication одобряет заявку вручную. Повторное одобрение
// не меняет ничего и сообщается вторым значением.
func (s *Storage) ApproveApplication(ctx context.Context, id int, now time.Time) (bool, error) {
	const op = "storage.ApproveApplication"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET approved = TRUE, approved_at = $1
			  WHERE id = $2 AND NOT approved`
	res, err := s.DB.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// AutoApprove одобряет заявку фоновой задачей: вместе с отметкой времени
// инициализируется отсчет еженедельных напоминаний. Условие NOT approved
// делает повторный прогон идемпотентным.
func (s *Storage) AutoApprove(ctx context.Context, id int, now time.Time) (bool, error) {
	const op = "storage.AutoApprove"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET approved = TRUE, approved_at = $1, last_reminder_sent = $1
			  WHERE id = $2 AND NOT approved`
	res, err := s.DB.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// RejectApplication снимает одобрение и очищает его отметку времени.
func (s *Storage) RejectApplication(ctx context.Context, id int) error {
	const op = "storage.RejectApplication"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET approved = FALSE, approved_at = NULL
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// TouchReminder фиксирует успешную отправку напоминания.
// Вызывается только после подтвержденной отправки письма.
func (s *Storage) TouchReminder(ctx context.Context, id int, now time.Time) error {
	const op = "storage.TouchReminder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE applications
			  SET last_reminder_sent = $1
			  WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// FindAutoApprovable находит заявки, отправленные не позже cutoff
// и еще не одобренные. Граница включающая.
func (s *Storage) FindAutoApprovable(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error) {
	const op = "storage.FindAutoApprovable"
	query := `SELECT ` + applicationColumns + `, u.full_name, u.email
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid
			  WHERE a.submitted AND NOT a.approved AND a.submitted_at <= $1`
	return s.queryApplicationRows(ctx, op, query, cutoff)
}

// FindReminderDue находит одобренные заявки, которым пора еженедельное
// напоминание: прошлое напоминание не позже cutoff либо не отправлялось вовсе.
func (s *Storage) FindReminderDue(ctx context.Context, cutoff time.Time) ([]*models.ApplicationRow, error) {
	const op = "storage.FindReminderDue"
	query := `SELECT ` + applicationColumns + `, u.full_name, u.email
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid
			  WHERE a.approved AND (a.last_reminder_sent IS NULL OR a.last_reminder_sent <= $1)`
	return s.queryApplicationRows(ctx, op, query, cutoff)
}

// ListForAdmin возвращает страницу административного списка и общее
// количество строк под теми же фильтрами.
func (s *Storage) ListForAdmin(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, int, error) {
	const op = "storage.ListForAdmin"
	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*)
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid` + where
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + applicationColumns + `, u.full_name, u.email
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid` + where + orderClause(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.queryApplicationRows(ctx, op, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListForExport возвращает все строки под фильтрами без пагинации,
// в том же порядке сортировки, что и список.
func (s *Storage) ListForExport(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, error) {
	const op = "storage.ListForExport"
	where, args := buildFilter(filter)
	query := `SELECT ` + applicationColumns + `, u.full_name, u.email
			  FROM applications a
			  JOIN users u ON u.uid = a.user_uid` + where + orderClause(filter)
	return s.queryApplicationRows(ctx, op, query, args...)
}

func buildFilter(filter models.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.EmailLike != "" {
		args = append(args, "%"+filter.EmailLike+"%")
		conds = append(conds, fmt.Sprintf("u.email ILIKE $%d", len(args)))
	}
	if filter.PassportStatus != "" {
		args = append(args, filter.PassportStatus)
		conds = append(conds, fmt.Sprintf("a.passport_status = $%d", len(args)))
	}
	if filter.Submitted != nil {
		args = append(args, *filter.Submitted)
		conds = append(conds, fmt.Sprintf("a.submitted = $%d", len(args)))
	}
	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		conds = append(conds, fmt.Sprintf("a.approved = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(filter models.ListFilter) string {
	column, ok := allowedSortColumns[filter.SortKey]
	if !ok {
		return " ORDER BY a.id ASC"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

func (s *Storage) execExpectingRow(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *Storage) queryApplicationRows(ctx context.Context, op, query string, args ...any) ([]*models.ApplicationRow, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.ApplicationRow
	for rows.Next() {
		row, err := scanApplicationRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanApplication(scan func(dest ...any) error) (*models.Application, error) {
	app := &models.Application{}
	var (
		phone, education, occupation, marital sql.NullString
		cv, idDoc, cert                       sql.NullString
		dateOfBirth                           sql.NullTime
		submittedAt, approvedAt, reminderAt   sql.NullTime
	)
	if err := scan(&app.ID, &app.UserUID, &app.PassportStatus, &phone,
		&dateOfBirth, &education, &occupation, &marital,
		&cv, &idDoc, &cert,
		&app.Submitted, &submittedAt, &app.Approved, &approvedAt, &reminderAt); err != nil {
		return nil, err
	}
	app.PhoneNumber = phone.String
	app.EducationLevel = education.String
	app.Occupation = occupation.String
	app.MaritalStatus = marital.String
	app.CVFilename = cv.String
	app.IDFilename = idDoc.String
	app.CertFilename = cert.String
	if dateOfBirth.Valid {
		app.DateOfBirth = &dateOfBirth.Time
	}
	if submittedAt.Valid {
		app.SubmittedAt = &submittedAt.Time
	}
	if approvedAt.Valid {
		app.ApprovedAt = &approvedAt.Time
	}
	if reminderAt.Valid {
		app.LastReminderSent = &reminderAt.Time
	}
	return app, nil
}

func scanApplicationRow(scan func(dest ...any) error) (*models.ApplicationRow, error) {
	row := &models.ApplicationRow{}
	var (
		phone, education, occupation, marital sql.NullString
		cv, idDoc, cert                       sql.NullString
		dateOfBirth                           sql.NullTime
		submittedAt, approvedAt, reminderAt   sql.NullTime
	)
	if err := scan(&row.ID, &row.UserUID, &row.PassportStatus, &phone,
		&dateOfBirth, &education, &occupation, &marital,
		&cv, &idDoc, &cert,
		&row.Submitted, &submittedAt, &row.Approved, &approvedAt, &reminderAt,
		&row.FullName, &row.Email); err != nil {
		return nil, err
	}
	row.PhoneNumber = phone.String
	row.EducationLevel = education.String
	row.Occupation = occupation.String
	row.MaritalStatus = marital.String
	row.CVFilename = cv.String
	row.IDFilename = idDoc.String
	row.CertFilename = cert.String
	if dateOfBirth.Valid {
		row.DateOfBirth = &dateOfBirth.Time
	}
	if submittedAt.Valid {
		row.SubmittedAt = &submittedAt.Time
	}
	if approvedAt.Valid {
		row.ApprovedAt = &approvedAt.Time
	}
	if reminderAt.Valid {
		row.LastReminderSent = &reminderAt.Time
	}
	return row, nil
}
