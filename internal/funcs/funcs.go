package funcs

import (
	"strconv"
	"text/template"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var TemplateFuncs = template.FuncMap{
	"formatInt":     formatInt[int],
	"formatInt64":   formatInt[int64],
	"formatMoney":   formatMoney,
	"formatTime":    formatTime,
	"formatPercent": formatPercent,
}

func formatInt[T constraints.Integer](n T) string {
	return printer.Sprintf("%d", n)
}

func formatMoney(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}
