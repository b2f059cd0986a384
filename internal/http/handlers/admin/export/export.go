// Package export реализует HTTP-обработчик выгрузки заявок в CSV.
// Выгрузка уважает те же фильтры и сортировку, что и список.
package export

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/handlers/admin/list"
	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
)

// Handler управляет HTTP-запросами выгрузки CSV.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выгрузки.
type Service interface {
	ExportCSV(ctx context.Context, filter models.ListFilter, w io.Writer) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузка заявок в CSV
// @Description Выгружает все заявки под текущими фильтрами в CSV-файл.
// @Tags Admin
// @Produce  text/csv
// @Security BearerAuth
// @Param email query string false "Подстрока почты заявителя"
// @Param passport_status query string false "Статус паспорта"
// @Param submitted query string false "Фильтр отправки: yes или no"
// @Param approved query string false "Фильтр одобрения: yes или no"
// @Param sort_by query string false "Ключ сортировки"
// @Param sort_dir query string false "Направление сортировки: asc или desc"
// @Success 200 {string} string "CSV-файл"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/applications/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.export"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := list.FilterFromQuery(r.URL.Query())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="applications.csv"`)
	if err := h.service.ExportCSV(r.Context(), filter, w); err != nil {
		log.Error("failed to export applications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export applications"))
		return
	}
	log.Info("applications exported")
}
