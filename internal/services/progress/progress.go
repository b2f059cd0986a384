// Package progress классифицирует заявку по степени заполненности.
//
// Evaluate относит заявку ровно к одному из шести состояний в фиксированном
// порядке приоритета, Percent считает процент готовности по восьми слотам:
// шесть скалярных полей по единице веса и группа из трёх документов весом
// два, которая засчитывается только целиком.
package progress

import (
	"github.com/workabroad/application-portal/internal/models"
)

// State состояние заявки относительно пошаговой анкеты.
type State int

const (
	// StateNoRecord заявка еще не создана.
	StateNoRecord State = iota
	// StateNeedsStep1 не выбран статус паспорта.
	StateNeedsStep1
	// StateNeedsStep2 не заполнены личные данные.
	StateNeedsStep2
	// StateNeedsStep3 не загружены документы.
	StateNeedsStep3
	// StateNeedsStep4 заявка не отправлена.
	StateNeedsStep4
	// StateComplete заявка отправлена.
	StateComplete
)

// Человекочитаемые названия шагов для письма-напоминания.
const (
	stepPassportName  = "Step 1: Passport info"
	stepPersonalName  = "Step 2: Personal Details"
	stepDocumentsName = "Step 3: Documents"
	stepSubmitName    = "Step 4: Final Submission"
)

// Evaluate классифицирует заявку. nil означает отсутствие записи.
func Evaluate(app *models.Application) State {
	switch {
	case app == nil:
		return StateNoRecord
	case app.PassportStatus == "":
		return StateNeedsStep1
	case !personalComplete(app):
		return StateNeedsStep2
	case !documentsComplete(app):
		return StateNeedsStep3
	case !app.Submitted:
		return StateNeedsStep4
	default:
		return StateComplete
	}
}

// Percent возвращает процент готовности заявки, floor(100*вес/8).
// Группа документов даёт свои два веса только если загружены все три файла.
func Percent(app *models.Application) int {
	if app == nil {
		return 0
	}
	completed := 0
	if app.PassportStatus != "" {
		completed++
	}
	if app.PhoneNumber != "" {
		completed++
	}
	if app.DateOfBirth != nil {
		completed++
	}
	if app.EducationLevel != "" {
		completed++
	}
	if app.Occupation != "" {
		completed++
	}
	if app.MaritalStatus != "" {
		completed++
	}
	if documentsComplete(app) {
		completed += 2
	}
	return completed * 100 / 8
}

// IsComplete сообщает, заполнены ли все восемь слотов.
func IsComplete(app *models.Application) bool {
	return app != nil &&
		app.PassportStatus != "" &&
		personalComplete(app) &&
		documentsComplete(app)
}

// MissingSteps возвращает названия незавершенных шагов в порядке анкеты.
// Для отправленной заявки список пуст.
func MissingSteps(app *models.Application) []string {
	var missing []string
	if app == nil {
		return []string{stepPassportName, stepPersonalName, stepDocumentsName, stepSubmitName}
	}
	if app.PassportStatus == "" {
		missing = append(missing, stepPassportName)
	}
	if !personalComplete(app) {
		missing = append(missing, stepPersonalName)
	}
	if !documentsComplete(app) {
		missing = append(missing, stepDocumentsName)
	}
	if !app.Submitted {
		missing = append(missing, stepSubmitName)
	}
	return missing
}

// NextRoute возвращает адрес следующего действия для состояния заявки.
func NextRoute(state State) string {
	switch state {
	case StateNoRecord, StateNeedsStep1:
		return "/application/step1"
	case StateNeedsStep2:
		return "/application/step2"
	case StateNeedsStep3:
		return "/application/step3"
	case StateNeedsStep4:
		return "/application/step4"
	default:
		return "/application/summary"
	}
}

func personalComplete(app *models.Application) bool {
	return app.PhoneNumber != "" &&
		app.DateOfBirth != nil &&
		app.EducationLevel != "" &&
		app.Occupation != "" &&
		app.MaritalStatus != ""
}

func documentsComplete(app *models.Application) bool {
	return app.CVFilename != "" &&
		app.IDFilename != "" &&
		app.CertFilename != ""
}
