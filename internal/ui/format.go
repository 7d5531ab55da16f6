package ui

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// Price formats an amount in the given ISO currency; "Free" for zero.
func Price(amount float64, iso string) string {
	if amount == 0 {
		return "Free"
	}
	iso = strings.ToUpper(iso)
	sym, ok := currencySymbols[iso]
	if !ok {
		sym = iso + " "
	}
	return sym + printer.Sprintf("%.2f", amount)
}

var currencySymbols = map[string]string{"": "$", "USD": "$", "EUR": "€", "GBP": "£", "INR": "₹", "KES": "KSh "}

// Count formats n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Plural returns "1 seat", "3 seats".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return Count(n) + " " + noun + "s"
}

// Title title-cases a status or category.
func Title(s string) string {
	return titler.String(s)
}

// Date formats an event date, keeping the separate time-of-day text.
func Date(d time.Time, clock string) string {
	if d.IsZero() {
		return "TBA"
	}
	out := d.Format("Mon, Jan 2 2006")
	if clock != "" {
		out += " · " + clock
	}
	return out
}

// Ago renders how long before now t happened, coarsely.
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case t.IsZero():
		return ""
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return printer.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return printer.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
