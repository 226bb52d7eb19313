package main

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCount renders integers with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatSeconds(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatOffset(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f", v)
}

func formatSlope(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatTimestamp renders seconds as h:mm:ss.mmm.
func formatTimestamp(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	ms := int64(math.Round(v * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	sec := ms / 1000 % 60
	ms %= 1000
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, sec, ms)
}

func titleCase(value string) string {
	return cases.Title(language.Und).String(value)
}
