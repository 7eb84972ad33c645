package simplecms

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

// FieldKind classifies how a field is edited and displayed.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindMarkdown FieldKind = "markdown"
	KindNumber   FieldKind = "number"
	KindBool     FieldKind = "bool"
	KindDateTime FieldKind = "datetime"
	KindUUID     FieldKind = "uuid"
	KindFile     FieldKind = "file"
	KindImage    FieldKind = "image"
	KindEnum     FieldKind = "enum"
	KindList     FieldKind = "list"
	KindGroup    FieldKind = "group"
	KindVariant  FieldKind = "variant"
)

// Markdown is a string edited with the markdown editor in the admin UI.
type Markdown string

// Enumerated is implemented by string-backed types with a fixed set of
// values. Fields of such types render as a radio group and are filterable.
type Enumerated interface {
	EnumValues() []string
}

// File references an uploaded blob. The admin UI uploads the bytes through
// the uploads endpoint and stores only the blob id and original filename.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a File with alternative text for accessibility.
type Image struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AltText string `json:"alt_text"`
}

// Value implements driver.Valuer so File columns persist as JSON.
func (f File) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *File) Scan(src any) error {
	return scanJSON(f, src)
}

// Value implements driver.Valuer so Image columns persist as JSON.
func (i Image) Value() (driver.Value, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (i *Image) Scan(src any) error {
	return scanJSON(i, src)
}

func scanJSON(dst any, src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}

// EditorConfig controls the markdown editor embedded in admin forms.
type EditorConfig struct {
	// EnableUploads enables drag-and-drop image upload in the editor.
	EnableUploads bool
	// MaxUploadSize is the upload size limit in bytes.
	MaxUploadSize int64
	// AllowedFileTypes lists the content types accepted by the upload
	// endpoint. Types are matched against the sniffed content, not the
	// client-declared one.
	AllowedFileTypes []string
}

// DefaultEditorConfig returns the editor defaults: uploads enabled, 2 MiB
// limit, PNG and JPEG only.
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		EnableUploads:    true,
		MaxUploadSize:    2 * 1024 * 1024,
		AllowedFileTypes: []string{"image/png", "image/jpeg"},
	}
}

// TypeAllowed reports whether the given content type is accepted for upload.
func (c EditorConfig) TypeAllowed(contentType string) bool {
	for _, t := range c.AllowedFileTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

var (
	markdownType = reflect.TypeOf(Markdown(""))
	fileType     = reflect.TypeOf(File{})
	imageType    = reflect.TypeOf(Image{})
)
