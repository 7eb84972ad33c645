package admin

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

//go:embed static
var staticFS embed.FS

// StaticHandler serves the embedded stylesheet, scripts and favicon. The
// admin router mounts it so /css, /js and /favicon.png resolve from the
// site root.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

type sidebarEntry struct {
	URL    string
	Label  string
	Active bool
}

// basePage carries the fields shared by every page template.
type basePage struct {
	Lang    string
	Title   string
	Sidebar []sidebarEntry
}

type listView struct {
	basePage
	Heading  string
	AddURL   string
	AddLabel string
	Columns  []listColumn
	Rows     []listRow
}

// listColumn is one table header. Hidden columns stay in the markup with a
// cms-column-hidden class, mirroring the cms:"hidden" tag.
type listColumn struct {
	Label  string
	Hidden bool
}

type listRow struct {
	// Onclick is the prebuilt onclick attribute navigating to the edit
	// page. Built in Go because the contextual escaper would rewrite the
	// URL inside a JS string.
	Onclick template.HTMLAttr
	Cells   []listCell
}

// rowOnclick builds the row navigation attribute. url must already be
// path-escaped; quotes are percent-encoded so they cannot terminate the
// surrounding JS string.
func rowOnclick(url string) template.HTMLAttr {
	url = strings.NewReplacer("'", "%27", `"`, "%22").Replace(url)
	return template.HTMLAttr(fmt.Sprintf(`onclick="window.location = '%s'"`, esc(url)))
}

type listCell struct {
	HTML   template.HTML
	Hidden bool
}

type formView struct {
	basePage
	Heading   string
	FormID    string
	Inputs    []formInput
	Submit    string
	DeleteURL string
	Delete    string
}

type formInput struct {
	Label string
	HTML  template.HTML
}

type errorView struct {
	basePage
	Heading string
	Lines   []string
	Back    string
}

// renderCell renders one list-table cell. Composite fields fall back to a
// compact JSON rendering.
func renderCell(f *simplecms.Field, v reflect.Value, uploadsPath string) template.HTML {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ""
	}

	switch f.Kind {
	case simplecms.KindText, simplecms.KindMarkdown, simplecms.KindEnum:
		return template.HTML(esc(v.String()))
	case simplecms.KindUUID, simplecms.KindNumber:
		return template.HTML(esc(fmt.Sprintf("%v", v.Interface())))
	case simplecms.KindBool:
		if v.Bool() {
			return `<input type="checkbox" disabled checked>`
		}
		return `<input type="checkbox" disabled>`
	case simplecms.KindDateTime:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		return template.HTML(fmt.Sprintf(`<time datetime="%s">%s</time>`,
			esc(t.Format(time.RFC3339)), esc(t.Format("2006-01-02 15:04:05 MST"))))
	case simplecms.KindFile:
		file := v.Interface().(simplecms.File)
		if file.ID == "" {
			return ""
		}
		return template.HTML(fmt.Sprintf(`<a href="%s/%s">%s</a>`,
			esc(uploadsPath), url.PathEscape(file.ID), esc(file.Name)))
	case simplecms.KindImage:
		img := v.Interface().(simplecms.Image)
		if img.ID == "" {
			return ""
		}
		return template.HTML(fmt.Sprintf(`<a href="%s/%s">%s</a> (%s)`,
			esc(uploadsPath), url.PathEscape(img.ID), esc(img.Name), esc(img.AltText)))
	case simplecms.KindList:
		return template.HTML(esc(fmt.Sprintf("%d", v.Len())))
	case simplecms.KindVariant:
		for i := range f.Fields {
			if f.Fields[i].Discriminator {
				dv := v.FieldByIndex(f.Fields[i].Index)
				return template.HTML(esc(simplecms.OptionLabel(dv.String())))
			}
		}
		return ""
	default:
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return ""
		}
		return template.HTML(esc(string(b)))
	}
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
