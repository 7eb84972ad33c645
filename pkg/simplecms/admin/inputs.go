package admin

import (
	"fmt"
	"html/template"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/message"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/i18n"
)

// inputRenderer builds the HTML controls of one entity form. Form input
// names are the Go field paths in dot notation, matching what the form
// decoder expects.
type inputRenderer struct {
	printer     *message.Printer
	formID      string
	editor      simplecms.EditorConfig
	uploadsPath string
}

// renderInputs builds the labelled controls for every editable field.
func (ir *inputRenderer) renderInputs(sc *simplecms.Schema, entity any) ([]formInput, error) {
	root, err := sc.Struct(entity)
	if err != nil {
		return nil, err
	}
	var out []formInput
	for _, f := range sc.Inputs() {
		out = append(out, formInput{
			Label: f.Label,
			HTML:  template.HTML(ir.input(f, f.ValueOf(root), f.Name, f.Label)),
		})
	}
	return out, nil
}

// input renders the control for one field. v may be invalid when no value
// exists yet, for example inside a nil variant or the empty list template.
func (ir *inputRenderer) input(f *simplecms.Field, v reflect.Value, name, label string) string {
	v = deref(v)

	if f.Hidden {
		if s, ok := ir.scalarString(f, v); ok {
			return fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, esc(name), esc(s))
		}
	}

	switch f.Kind {
	case simplecms.KindText, simplecms.KindMarkdown:
		value := ""
		if v.IsValid() {
			value = v.String()
		}
		if f.Kind == simplecms.KindMarkdown {
			return ir.markdownInput(name, label, value, f.Required)
		}
		return textInput(name, label, value, f.Required)

	case simplecms.KindUUID:
		value := ""
		if v.IsValid() && !v.IsZero() {
			value = fmt.Sprintf("%v", v.Interface())
		}
		return textInput(name, label, value, f.Required)

	case simplecms.KindNumber:
		return ir.numberInput(f, v, name, label)

	case simplecms.KindBool:
		checked := ""
		if v.IsValid() && v.Bool() {
			checked = " checked"
		}
		return fmt.Sprintf(`<input type="checkbox" name="%s"%s>`, esc(name), checked)

	case simplecms.KindDateTime:
		return ir.datetimeInput(v, name, f.Required)

	case simplecms.KindEnum:
		return ir.plainEnumInput(f, v, name)

	case simplecms.KindVariant:
		return ir.variantInput(f, v, name)

	case simplecms.KindGroup:
		return ir.groupInput(f, v, name)

	case simplecms.KindList:
		return ir.listInput(f, v, name, label)

	case simplecms.KindFile:
		var cur simplecms.File
		if v.IsValid() {
			cur = v.Interface().(simplecms.File)
		}
		return ir.fileInput(name, cur.ID, cur.Name, "", f.Required, false)

	case simplecms.KindImage:
		var cur simplecms.Image
		if v.IsValid() {
			cur = v.Interface().(simplecms.Image)
		}
		return ir.fileInput(name, cur.ID, cur.Name, cur.AltText, f.Required, true)
	}
	return ""
}

func textInput(name, placeholder, value string, required bool) string {
	return fmt.Sprintf(`<input type="text" name="%s" placeholder="%s" class="cms-text-input" value="%s"%s>`,
		esc(name), esc(placeholder), esc(value), requiredAttr(required))
}

func (ir *inputRenderer) numberInput(f *simplecms.Field, v reflect.Value, name, label string) string {
	value := ""
	if v.IsValid() {
		value = fmt.Sprintf("%v", v.Interface())
	}
	step := ""
	switch base(f.Type).Kind() {
	case reflect.Float32, reflect.Float64:
		step = ` step="any"`
	}
	return fmt.Sprintf(`<input type="number" name="%s" placeholder="%s" class="cms-number-input" value="%s"%s%s>`,
		esc(name), esc(label), esc(value), step, requiredAttr(f.Required))
}

func (ir *inputRenderer) markdownInput(name, label, value string, required bool) string {
	id := uuid.NewString()
	opts := fmt.Sprintf(`{ element: document.getElementById("%s") }`, id)
	if ir.editor.EnableUploads {
		opts = fmt.Sprintf(`{ element: document.getElementById("%s"), uploadImage: true, imageUploadEndpoint: "%s" }`,
			id, ir.uploadsPath)
	}

	var b strings.Builder
	b.WriteString(`<div class="cms-markdown-editor">`)
	b.WriteString(`<div class="cms-markdown-buttons"></div>`)
	fmt.Fprintf(&b, `<textarea name="%s" placeholder="%s" id="%s"%s>%s</textarea>`,
		esc(name), esc(label), id, requiredAttr(required), esc(value))
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/easymde/dist/easymde.min.css">`)
	b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/easymde/dist/easymde.min.js"></script>`)
	fmt.Fprintf(&b, `<script>new EasyMDE(%s);</script>`, opts)
	b.WriteString(`</div>`)
	return b.String()
}

const datetimeScript = `<script type="module">
const input = document.getElementById("%s");
const hidden = document.getElementById("%s");
const pad = (n) => n.toString().padStart(2, "0");
if (hidden.value) {
  const d = new Date(hidden.value);
  input.value = d.getFullYear() + "-" + pad(d.getMonth() + 1) + "-" + pad(d.getDate()) +
    "T" + pad(d.getHours()) + ":" + pad(d.getMinutes());
}
document.getElementById("%s").addEventListener("submit", () => {
  if (input.value) hidden.value = new Date(input.value).toISOString();
});
</script>`

// datetimeInput renders a datetime-local control backed by a hidden RFC 3339
// field. The visible control works in the browser's timezone; the hidden
// value is what the form submits.
func (ir *inputRenderer) datetimeInput(v reflect.Value, name string, required bool) string {
	value := ""
	if v.IsValid() {
		if t := v.Interface().(time.Time); !t.IsZero() {
			value = t.Format(time.RFC3339)
		}
	}
	inputID := uuid.NewString()
	hiddenID := uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, `<input type="datetime-local" id="%s" class="cms-datetime-input">`, inputID)
	fmt.Fprintf(&b, `<input type="hidden" name="%s" id="%s" value="%s"%s>`,
		esc(name), hiddenID, esc(value), requiredAttr(required))
	fmt.Fprintf(&b, datetimeScript, inputID, hiddenID, ir.formID)
	b.WriteString(`<noscript>It appears that JavaScript is disabled. JavaScript is required to set dates in your current timezone. Please enter dates in UTC (Coordinated universal time) instead.</noscript>`)
	return b.String()
}

// enumVariant is one selectable option of a radio switcher, with optional
// nested content shown while selected.
type enumVariant struct {
	value   string
	label   string
	content string
}

// enumInput renders the radio switcher shared by enum fields and variant
// groups. Unselected content stays in the page inside disabled fieldsets so
// switching loses no input state, while disabled controls are not submitted.
func enumInput(radioName string, variants []enumVariant, selected int) string {
	var b strings.Builder
	b.WriteString(`<div class="cms-enum-type">`)
	for i, ev := range variants {
		id := radioName + "_radio-button_" + ev.value
		checked := ""
		if i == selected {
			checked = " checked"
		}
		fmt.Fprintf(&b, `<input type="radio" name="%s" value="%s" id="%s" onchange="cmsEnumInputOnchange(this)"%s>`,
			esc(radioName), esc(ev.value), esc(id), checked)
		fmt.Fprintf(&b, `<label for="%s">%s</label>`, esc(id), esc(ev.label))
	}
	b.WriteString(`</div><div class="cms-enum-data">`)
	for i, ev := range variants {
		class := "cms-enum-container"
		disabled := ""
		switch {
		case i < selected:
			class += " cms-enum-hidden cms-enum-hidden-left"
			disabled = " disabled"
		case i > selected:
			class += " cms-enum-hidden cms-enum-hidden-right"
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<fieldset class="%s"%s>%s</fieldset>`, class, disabled, ev.content)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func (ir *inputRenderer) plainEnumInput(f *simplecms.Field, v reflect.Value, name string) string {
	current := ""
	if v.IsValid() {
		current = v.String()
	}
	selected := 0
	variants := make([]enumVariant, len(f.Options))
	for i, opt := range f.Options {
		if opt == current {
			selected = i
		}
		variants[i] = enumVariant{value: opt, label: simplecms.OptionLabel(opt)}
	}
	return enumInput(name, variants, selected)
}

func (ir *inputRenderer) variantInput(f *simplecms.Field, v reflect.Value, name string) string {
	var disc *simplecms.Field
	var fields []*simplecms.Field
	for i := range f.Fields {
		c := &f.Fields[i]
		switch {
		case c.Discriminator:
			disc = c
		case c.VariantField:
			fields = append(fields, c)
		}
	}
	if disc == nil {
		return ""
	}

	current := ""
	if v.IsValid() {
		if dv := deref(disc.ValueOf(v)); dv.IsValid() {
			current = dv.String()
		}
	}

	selected := 0
	variants := make([]enumVariant, len(fields))
	for i, vf := range fields {
		if vf.WireName == current {
			selected = i
		}
		inner := reflect.Value{}
		if v.IsValid() {
			inner = vf.ValueOf(v)
		}
		variants[i] = enumVariant{
			value:   vf.WireName,
			label:   simplecms.OptionLabel(vf.WireName),
			content: ir.input(vf, inner, name+"."+vf.Name, vf.Label),
		}
	}
	return enumInput(name+"."+disc.Name, variants, selected)
}

func (ir *inputRenderer) groupInput(f *simplecms.Field, v reflect.Value, name string) string {
	var b strings.Builder
	b.WriteString(`<fieldset class="cms-prop-group">`)
	for i := range f.Fields {
		c := &f.Fields[i]
		if c.SkipInput {
			continue
		}
		inner := reflect.Value{}
		if v.IsValid() {
			inner = c.ValueOf(v)
		}
		fmt.Fprintf(&b, `<div class="cms-prop-container"><label class="cms-prop-label">%s</label>%s</div>`,
			esc(c.Label), ir.input(c, inner, name+"."+c.Name, c.Label))
	}
	b.WriteString(`</fieldset>`)
	return b.String()
}

func (ir *inputRenderer) listInput(f *simplecms.Field, v reflect.Value, name, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="cms-list-input" data-name="%s">`, esc(name))
	if v.IsValid() {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintf(&b, `<fieldset class="cms-list-element">%s</fieldset>`,
				ir.input(f.Elem, v.Index(i), name+"."+strconv.Itoa(i), label))
		}
	}
	// The template row is detached and cloned by list.js. It starts disabled
	// so a submit without JavaScript does not post a phantom element.
	fmt.Fprintf(&b, `<fieldset class="cms-list-element cms-list-template" disabled>%s</fieldset>`,
		ir.input(f.Elem, reflect.Value{}, name+".0", label))
	b.WriteString(`<button type="button" class="cms-button cms-list-add">+</button></div>`)
	return b.String()
}

func (ir *inputRenderer) fileInput(name, id, fileName, altText string, required, image bool) string {
	class := "cms-file cms-prop-group"
	accept := ""
	if image {
		class = "cms-image cms-prop-group"
		accept = ` accept="image/*"`
	}
	req := ""
	if required && id == "" {
		req = " required"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<fieldset class="%s">`, class)
	fmt.Fprintf(&b, `<input type="file" class="cms-file-input" data-endpoint="%s"%s%s>`,
		esc(ir.uploadsPath), accept, req)
	fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, esc(name+".ID"), esc(id))
	fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, esc(name+".Name"), esc(fileName))
	if image {
		fmt.Fprintf(&b, `<input type="text" name="%s" placeholder="%s" class="cms-text-input cms-prop-container" value="%s">`,
			esc(name+".AltText"), esc(ir.printer.Sprintf(i18n.ImageAltTextKey)), esc(altText))
	}
	if id != "" {
		fmt.Fprintf(&b, `<a class="cms-file-current" href="%s/%s" target="_blank">%s</a>`,
			esc(ir.uploadsPath), url.PathEscape(id), esc(fileName))
	}
	b.WriteString(`</fieldset>`)
	return b.String()
}

// scalarString returns the submitted string form of a scalar field value,
// or false for composite kinds.
func (ir *inputRenderer) scalarString(f *simplecms.Field, v reflect.Value) (string, bool) {
	if !v.IsValid() {
		switch f.Kind {
		case simplecms.KindText, simplecms.KindMarkdown, simplecms.KindNumber,
			simplecms.KindBool, simplecms.KindDateTime, simplecms.KindUUID, simplecms.KindEnum:
			return "", true
		}
		return "", false
	}
	switch f.Kind {
	case simplecms.KindText, simplecms.KindMarkdown, simplecms.KindEnum:
		return v.String(), true
	case simplecms.KindNumber:
		return fmt.Sprintf("%v", v.Interface()), true
	case simplecms.KindBool:
		return strconv.FormatBool(v.Bool()), true
	case simplecms.KindUUID:
		if v.IsZero() {
			return "", true
		}
		return fmt.Sprintf("%v", v.Interface()), true
	case simplecms.KindDateTime:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "", true
		}
		return t.Format(time.RFC3339), true
	}
	return "", false
}

func requiredAttr(required bool) string {
	if required {
		return " required"
	}
	return ""
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func base(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
