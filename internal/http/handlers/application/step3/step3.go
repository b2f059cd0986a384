// Package step3 реализует HTTP-обработчик третьего шага анкеты:
// имена загруженных документов.
package step3

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/workabroad/application-portal/internal/http/middlewarectx"
	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/services/application"
)

// Handler управляет HTTP-запросами третьего шага анкеты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики третьего шага.
type Service interface {
	SaveStep3(ctx context.Context, userUID string, req models.DummyStep3) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сохранить документы
// @Description Сохраняет третий шаг анкеты: имена файлов резюме, удостоверения и сертификата.
// @Tags Application
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyStep3 true "Имена документов"
// @Success 200 {object} response.Response "Шаг сохранен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не начата"
// @Failure 409 {object} response.ErrorResponse "Заявка уже отправлена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /application/step3 [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.application.step3"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyStep3
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.SaveStep3(r.Context(), userUID, req); err != nil {
		switch {
		case errors.Is(err, application.ErrNoApplication):
			log.Error("application not started", slog.String("user", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("application not started"))
		case errors.Is(err, application.ErrAlreadySubmitted):
			log.Error("application already submitted", slog.String("user", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("application already submitted"))
		default:
			log.Error("failed to save step", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save step"))
		}
		return
	}

	log.Info("documents saved", slog.String("user", userUID))
	render.JSON(w, r, response.OK())
}
