// Package list реализует HTTP-обработчик административного списка заявок
// с фильтрами, сортировкой и пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/response"
	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/models"
)

// Handler управляет HTTP-запросами административного списка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка заявок.
type Service interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.ApplicationRow, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// RowView строка списка для JSON-ответа.
type RowView struct {
	ID             int    `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PassportStatus string `json:"passport_status"`
	Submitted      bool   `json:"submitted"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	Approved       bool   `json:"approved"`
	ApprovedAt     string `json:"approved_at,omitempty"`
}

// ToView преобразует строку списка в JSON-представление.
func ToView(row *models.ApplicationRow) RowView {
	view := RowView{
		ID:             row.ID,
		FullName:       row.FullName,
		Email:          row.Email,
		PassportStatus: row.PassportStatus,
		Submitted:      row.Submitted,
		Approved:       row.Approved,
	}
	if row.SubmittedAt != nil {
		view.SubmittedAt = row.SubmittedAt.Format(time.RFC3339)
	}
	if row.ApprovedAt != nil {
		view.ApprovedAt = row.ApprovedAt.Format(time.RFC3339)
	}
	return view
}

// FilterFromQuery собирает фильтр списка из параметров запроса.
// Неизвестный ключ сортировки молча откатывается на id.
func FilterFromQuery(values url.Values) models.ListFilter {
	filter := models.ListFilter{
		EmailLike:      values.Get("email"),
		PassportStatus: values.Get("passport_status"),
		Submitted:      models.TriState(values.Get("submitted")),
		Approved:       models.TriState(values.Get("approved")),
		SortKey:        values.Get("sort_by"),
		SortDesc:       values.Get("sort_dir") == "desc",
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil {
		filter.PerPage = perPage
	}
	return filter
}

// ServeHTTP godoc
// @Summary Список заявок
// @Description Возвращает страницу заявок с фильтрами по почте, статусу паспорта и флагам отправки и одобрения.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param email query string false "Подстрока почты заявителя"
// @Param passport_status query string false "Статус паспорта"
// @Param submitted query string false "Фильтр отправки: yes или no"
// @Param approved query string false "Фильтр одобрения: yes или no"
// @Param sort_by query string false "Ключ сортировки: id, name, email, passport_status, submitted, approved"
// @Param sort_dir query string false "Направление сортировки: asc или desc"
// @Param page query int false "Номер страницы"
// @Param per_page query int false "Размер страницы"
// @Success 200 {object} map[string]any "Страница заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/applications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := FilterFromQuery(r.URL.Query())
	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list applications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list applications"))
		return
	}

	views := make([]RowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ToView(row))
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"applications": views,
		"total":        total,
	}))
}
