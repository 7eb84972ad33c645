package simplecms

import "net/url"

// ListEntitiesRequest contains parameters for listing entities of one type.
type ListEntitiesRequest struct {
	// Name is the singular entity name.
	Name string
	// Filters narrows the result to exact matches on filterable (string-
	// typed) columns, keyed by wire name. Multi-valued keys use the first
	// value.
	Filters url.Values
}

// GetEntityRequest contains parameters for fetching one entity.
type GetEntityRequest struct {
	Name string
	ID   string
}

// CreateEntityRequest contains parameters for creating an entity.
type CreateEntityRequest struct {
	Name string
	// Entity is a pointer to the registered struct type. A zero id is
	// replaced with a generated one.
	Entity any
}

// UpdateEntityRequest contains parameters for replacing an entity.
type UpdateEntityRequest struct {
	Name string
	// ID is the authoritative id; it overrides any id carried in Entity.
	ID     string
	Entity any
	// PreserveSkipped copies the stored values of skipinput fields onto
	// Entity before saving. The admin form flow sets this; the JSON API
	// performs a verbatim full replace.
	PreserveSkipped bool
}

// DeleteEntityRequest contains parameters for deleting an entity.
type DeleteEntityRequest struct {
	Name string
	ID   string
}
