// Package regnumber формирует официальный регистрационный номер заявки:
// четырехзначный год плюс идентификатор, дополненный нулями до шести цифр.
package regnumber

import (
	"fmt"
	"time"
)

// Format возвращает номер вида "<год><id в шести цифрах>",
// например id 42 в 2025 году дает "2025000042".
// Идентификаторы длиннее шести цифр печатаются без усечения.
func Format(id int, now time.Time) string {
	return fmt.Sprintf("%d%06d", now.Year(), id)
}
