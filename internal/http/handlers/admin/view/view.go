// Package view реализует HTTP-обработчик просмотра одной заявки
// администратором.
package view

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// Handler управляет HTTP-запросами просмотра заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики просмотра.
type Service interface {
	View(ctx context.Context, id int) (*models.ApplicationRow, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

type applicationView struct {
	ID               int    `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	PassportStatus   string `json:"passport_status"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	EducationLevel   string `json:"education_level,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	MaritalStatus    string `json:"marital_status,omitempty"`
	CVFilename       string `json:"cv_filename,omitempty"`
	IDFilename       string `json:"id_filename,omitempty"`
	CertFilename     string `json:"cert_filename,omitempty"`
	Submitted        bool   `json:"submitted"`
	SubmittedAt      string `json:"submitted_at,omitempty"`
	Approved         bool   `json:"approved"`
	ApprovedAt       string `json:"approved_at,omitempty"`
	LastReminderSent string `json:"last_reminder_sent,omitempty"`
}

// ServeHTTP godoc
// @Summary Просмотр заявки
// @Description Возвращает заявку целиком вместе с данными заявителя.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} map[string]any "Данные заявки"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/applications/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.view"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid application id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid application id"))
		return
	}

	row, err := h.service.View(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("application not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not found"))
			return
		}
		log.Error("failed to read application", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read application"))
		return
	}

	render.JSON(w, r, response.OKWithData(toView(row)))
}

func toView(row *models.ApplicationRow) applicationView {
	view := applicationView{
		ID:             row.ID,
		FullName:       row.FullName,
		Email:          row.Email,
		PassportStatus: row.PassportStatus,
		PhoneNumber:    row.PhoneNumber,
		EducationLevel: row.EducationLevel,
		Occupation:     row.Occupation,
		MaritalStatus:  row.MaritalStatus,
		CVFilename:     row.CVFilename,
		IDFilename:     row.IDFilename,
		CertFilename:   row.CertFilename,
		Submitted:      row.Submitted,
		Approved:       row.Approved,
	}
	if row.DateOfBirth != nil {
		view.DateOfBirth = row.DateOfBirth.Format("2006-01-02")
	}
	if row.SubmittedAt != nil {
		view.SubmittedAt = row.SubmittedAt.Format(time.RFC3339)
	}
	if row.ApprovedAt != nil {
		view.ApprovedAt = row.ApprovedAt.Format(time.RFC3339)
	}
	if row.LastReminderSent != nil {
		view.LastReminderSent = row.LastReminderSent.Format(time.RFC3339)
	}
	return view
}
