// Package simplecms derives a content management system from annotated Go
// structs with pluggable repository and blob storage backends.
//
// An entity is a plain struct whose fields carry `cms` tags. ParseSchema
// inspects a struct once and produces a Schema: field kinds, column and
// input sets, naming in every casing the HTTP surfaces need, and the
// location of the single id field. A Service registers schemas and
// orchestrates list/get/create/update/delete against a Repository, firing
// lifecycle hooks around each write. Implementations of repositories
// (memory, GORM over Postgres or SQLite) and blob stores (memory,
// filesystem, S3) are provided under subpackages, and the api, admin, and
// uploads subpackages expose the service over HTTP.
//
// # Field Kinds
//
// Kinds are resolved from Go types: strings are text, Markdown gets an
// editor, time.Time a datetime input, slices repeatable input lists, and
// nested structs either inline groups or, when shaped as a discriminator
// plus pointer variants, tagged unions. Types implementing Enumerated
// render as a fixed choice. File and Image reference uploaded blobs by id
// rather than embedding bytes.
package simplecms
