package simplecms

import (
	"strings"

	"github.com/huandu/xstrings"
	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// snakeName converts a Go identifier to its snake_case entity or field name.
func snakeName(s string) string {
	return xstrings.ToSnakeCase(s)
}

// pluralName pluralizes a snake_case name ("blog_post" -> "blog_posts").
func pluralName(s string) string {
	return inflection.Plural(s)
}

// pathName converts a snake_case name to its kebab-case URL segment.
func pathName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// labelName converts a snake_case name to a Title Case human label.
func labelName(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// OptionLabel returns the Title Case display form of an enum option or
// variant name.
func OptionLabel(option string) string {
	return labelName(snakeName(option))
}
