// Package submit реализует HTTP-обработчик четвертого шага анкеты:
// финальную отправку заявки. После отправки заявка для владельца неизменяема.
package submit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/middlewarectx"
	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/services/application"
)

// Handler управляет HTTP-запросами на отправку заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отправки.
type Service interface {
	Submit(ctx context.Context, userUID string) ([]string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отправить заявку
// @Description Отправляет полностью заполненную анкету на рассмотрение. Неполная анкета отклоняется со списком оставшихся шагов.
// @Tags Application
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Заявка отправлена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не начата"
// @Failure 409 {object} response.ErrorResponse "Заявка уже отправлена"
// @Failure 422 {object} map[string]any "Анкета заполнена не полностью"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /application/step4 [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.application.submit"
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

	missing, err := h.service.Submit(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNoApplication):
			log.Error("application not started", slog.String("user", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not started"))
		case errors.Is(err, application.ErrAlreadySubmitted):
			log.Error("application already submitted", slog.String("user", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("application already submitted"))
		case errors.Is(err, application.ErrIncomplete):
			log.Error("application is not complete", slog.String("user", userUID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  "application is not complete",
				Data: map[string]any{
					"missing_steps": missing,
				},
			})
		default:
			log.Error("failed to submit application", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not submit application"))
		}
		return
	}

	log.Info("application submitted", slog.String("user", userUID))
	render.JSON(w, r, response.OK())
}
