// Package approve реализует HTTP-обработчик ручного одобрения заявки.
package approve

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

// Handler управляет HTTP-запросами одобрения заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики одобрения.
type Service interface {
	Approve(ctx context.Context, id int) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Одобрить заявку
// @Description Одобряет заявку и отправляет письмо о зачислении. Возвращает регистрационный номер.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} map[string]any "Заявка одобрена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже одобрена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/applications/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.approve"
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

	regNumber, err := h.service.Approve(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("application not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not found"))
		case errors.Is(err, admin.ErrAlreadyApproved):
			log.Error("application already approved", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("application already approved"))
		default:
			log.Error("failed to approve application", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not approve application"))
		}
		return
	}

	log.Info("application approved", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"registration_number": regNumber,
	}))
}
