// Package sendletter реализует HTTP-обработчик ручной отправки письма
// о зачислении. Параметр reminder=true превращает письмо в напоминание.
package sendletter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/services/admin"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// Handler управляет HTTP-запросами отправки писем.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отправки писем.
type Service interface {
	SendAcceptance(ctx context.Context, id int, isReminder bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отправить письмо о зачислении
// @Description Отправляет письмо о зачислении одобренной заявке. С параметром reminder=true отправляется напоминание и фиксируется его отметка времени.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Param reminder query bool false "Отправить как напоминание"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка не одобрена"
// @Failure 500 {object} response.ErrorResponse "Ошибка отправки"
// @Router /admin/applications/{id}/letter [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.sendletter"
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
	isReminder := r.URL.Query().Get("reminder") == "true"

	if err := h.service.SendAcceptance(r.Context(), id, isReminder); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("application not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not found"))
		case errors.Is(err, admin.ErrNotApproved):
			log.Error("application is not approved", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("application is not approved"))
		default:
			log.Error("failed to send letter", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not send letter"))
		}
		return
	}

	log.Info("letter sent", slog.Int("id", id), slog.Bool("reminder", isReminder))
	render.JSON(w, r, response.OK())
}
