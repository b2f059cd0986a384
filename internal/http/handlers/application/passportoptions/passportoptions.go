// Package passportoptions реализует HTTP-обработчик страницы вариантов
// оформления паспорта. Сюда попадают заявители, выбравшие на первом шаге
// статус needs_passport; анкета при этом остается открытой.
package passportoptions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/workabroad/application-portal/internal/http/response"
)

// Handler отдает варианты оформления паспорта.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

type option struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ProcessingTime string `json:"processing_time"`
}

// Содержимое статично: государственный канал и ускоренное оформление.
var options = []option{
	{
		Name:           "Government office",
		Description:    "Apply in person at your nearest government passport office.",
		ProcessingTime: "6-8 weeks",
	},
	{
		Name:           "Express processing",
		Description:    "Submit your details and documents for expedited processing.",
		ProcessingTime: "5-10 business days",
	},
}

// ServeHTTP godoc
// @Summary Варианты оформления паспорта
// @Description Возвращает варианты получения паспорта для заявителей без паспорта.
// @Tags Application
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список вариантов"
// @Router /application/passport-options [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"options": options,
	}))
}
