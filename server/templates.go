package server

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

var templateFuncs = template.FuncMap{
	"miles": func(miles float64) string {
		return fmt.Sprintf("%.1f", miles)
	},
	"runDate": func(date string) string {
		t, err := time.Parse(store.DateFormat, date)
		if err != nil {
			return date
		}
		return t.Format("Mon, Jan 2 2006")
	},
	"month": func(key string) string {
		t, err := time.Parse(store.MonthFormat, key)
		if err != nil {
			return key
		}
		return t.Format("January 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("Jan 2 2006 15:04")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}
