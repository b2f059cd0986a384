// Package summary реализует HTTP-обработчик страницы сводки заявки.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/middlewarectx"
	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/services/application"
)

// Handler управляет HTTP-запросами сводки заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сводки.
type Service interface {
	Summary(ctx context.Context, userUID string) (*models.Application, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

type summaryView struct {
	PassportStatus string `json:"passport_status"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	MaritalStatus  string `json:"marital_status,omitempty"`
	CVFilename     string `json:"cv_filename,omitempty"`
	IDFilename     string `json:"id_filename,omitempty"`
	CertFilename   string `json:"cert_filename,omitempty"`
	Submitted      bool   `json:"submitted"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	Approved       bool   `json:"approved"`
	ApprovedAt     string `json:"approved_at,omitempty"`
}

// ServeHTTP godoc
// @Summary Сводка заявки
// @Description Возвращает все сохраненные поля анкеты текущего пользователя.
// @Tags Application
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Данные заявки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не начата"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /application/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.application.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	app, err := h.service.Summary(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, application.ErrNoApplication) {
			log.Error("application not started", slog.String("user", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not started"))
			return
		}
		log.Error("failed to read application", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read application"))
		return
	}

	render.JSON(w, r, response.OKWithData(toView(app)))
}

func toView(app *models.Application) summaryView {
	view := summaryView{
		PassportStatus: app.PassportStatus,
		PhoneNumber:    app.PhoneNumber,
		EducationLevel: app.EducationLevel,
		Occupation:     app.Occupation,
		MaritalStatus:  app.MaritalStatus,
		CVFilename:     app.CVFilename,
		IDFilename:     app.IDFilename,
		CertFilename:   app.CertFilename,
		Submitted:      app.Submitted,
		Approved:       app.Approved,
	}
	if app.DateOfBirth != nil {
		view.DateOfBirth = app.DateOfBirth.Format("2006-01-02")
	}
	if app.SubmittedAt != nil {
		view.SubmittedAt = app.SubmittedAt.Format(time.RFC3339)
	}
	if app.ApprovedAt != nil {
		view.ApprovedAt = app.ApprovedAt.Format(time.RFC3339)
	}
	return view
}
