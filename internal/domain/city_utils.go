package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeLocation приводит название города/провинции к виду для сравнения:
// обрезает пробелы и выполняет Unicode case folding.
func NormalizeLocation(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// LocationsMatch проверяет, совпадают ли два названия без учёта регистра.
// Пустые значения никогда не совпадают.
func LocationsMatch(a, b string) bool {
	na, nb := NormalizeLocation(a), NormalizeLocation(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}
