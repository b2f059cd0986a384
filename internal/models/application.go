package models

import "time"

// Статусы паспорта на первом шаге анкеты.
const (
	PassportHas     = "has_passport"
	PassportNeeds   = "needs_passport"
	PassportApplied = "applied_for_passport"
)

// Application представляет заявку пользователя на работу за рубежом.
// Поля заполняются по шагам: статус паспорта, личные данные, документы,
// финальная отправка. После отправки заявка для владельца неизменяема.
type Application struct {
	ID      int    // Идентификатор заявки
	UserUID string // Владелец заявки, один к одному

	// Шаг 1
	PassportStatus string

	// Шаг 2
	PhoneNumber    string
	DateOfBirth    *time.Time
	EducationLevel string
	Occupation     string
	MaritalStatus  string

	// Шаг 3: имена загруженных файлов
	CVFilename   string
	IDFilename   string
	CertFilename string

	// Шаг 4 и административные отметки
	Submitted        bool
	SubmittedAt      *time.Time
	Approved         bool
	ApprovedAt       *time.Time
	LastReminderSent *time.Time
}

// ApplicationRow строка административного списка: заявка вместе
// с именем и почтой заявителя.
type ApplicationRow struct {
	Application
	FullName string
	Email    string
}

// DummyStep1 данные первого шага из JSON-запроса.
type DummyStep1 struct {
	PassportStatus string `json:"passport_status" validate:"required,oneof=has_passport needs_passport applied_for_passport"`
}

// DummyStep2 данные второго шага. Дата рождения приходит строкой
// в формате 2006-01-02 и парсится вручную.
type DummyStep2 struct {
	PhoneNumber    string `json:"phone_number" validate:"required"`
	DateOfBirth    string `json:"date_of_birth" validate:"required"`
	EducationLevel string `json:"education_level" validate:"required"`
	Occupation     string `json:"occupation" validate:"required"`
	MaritalStatus  string `json:"marital_status" validate:"required"`
}

// DummyStep3 имена загруженных документов. Сама обработка загрузки
// файлов живет во внешнем слое, сюда попадают только имена.
type DummyStep3 struct {
	CVFilename   string `json:"cv_filename" validate:"required"`
	IDFilename   string `json:"id_filename" validate:"required"`
	CertFilename string `json:"cert_filename" validate:"required"`
}
