// Package demote реализует HTTP-обработчик снятия роли администратора.
package demote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/middlewarectx"
	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/services/admin"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// Handler управляет HTTP-запросами снятия роли.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики снятия роли.
type Service interface {
	Demote(ctx context.Context, actorUID, uid string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Снять роль администратора
// @Description Возвращает пользователю роль user. Снять роль с самого себя нельзя.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Success 200 {object} response.Response "Роль снята"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора или попытка снять роль с себя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{uid}/demote [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.demote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || actorUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	uid := chi.URLParam(r, "uid")
	if err := h.service.Demote(r.Context(), actorUID, uid); err != nil {
		switch {
		case errors.Is(err, admin.ErrSelfChange):
			log.Error("attempt to demote self", slog.String("uid", uid))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("cannot demote your own account"))
		case errors.Is(err, repository.ErrNotFound):
			log.Error("user not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to demote user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not demote user"))
		}
		return
	}

	log.Info("user demoted", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}
