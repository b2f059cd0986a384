package models

// ListFilter параметры фильтрации, сортировки и пагинации
// административного списка заявок. Submitted и Approved тройственные:
// nil - фильтр не задан.
type ListFilter struct {
	EmailLike      string // Подстрока почты заявителя
	PassportStatus string // Точное совпадение статуса паспорта
	Submitted      *bool
	Approved       *bool
	SortKey        string // Ключ из белого списка, иначе id
	SortDesc       bool
	Page           int // Номер страницы, с единицы
	PerPage        int
}

// DummyListFilter используется для приёма параметров списка из запроса.
// Тройственные флаги приходят строками "yes"/"no"/"".
type DummyListFilter struct {
	Email          string `json:"email,omitempty"`
	PassportStatus string `json:"passport_status,omitempty" validate:"omitempty,oneof=has_passport needs_passport applied_for_passport"`
	Submitted      string `json:"submitted,omitempty" validate:"omitempty,oneof=yes no"`
	Approved       string `json:"approved,omitempty" validate:"omitempty,oneof=yes no"`
	SortBy         string `json:"sort_by,omitempty"`
	SortDir        string `json:"sort_dir,omitempty" validate:"omitempty,oneof=asc desc"`
	Page           int    `json:"page,omitempty" validate:"omitempty,gte=1"`
	PerPage        int    `json:"per_page,omitempty" validate:"omitempty,gte=1"`
}

// TriState преобразует строку "yes"/"no" в тройственный указатель.
func TriState(s string) *bool {
	switch s {
	case "yes":
		v := true
		return &v
	case "no":
		v := false
		return &v
	default:
		return nil
	}
}
