package simplecms

import "context"

// Hooks extend entity lifecycle handling without modifying core code. Before
// hooks may veto the operation by returning an error; errors from After hooks
// are logged and do not fail the operation.
type Hooks struct {
	BeforeCreate []BeforeCreateHook
	AfterCreate  []AfterCreateHook
	BeforeUpdate []BeforeUpdateHook
	AfterUpdate  []AfterUpdateHook
	BeforeDelete []BeforeDeleteHook
	AfterDelete  []AfterDeleteHook
}

// BeforeCreateHook runs before an entity is persisted.
type BeforeCreateHook func(ctx context.Context, schema *Schema, entity any) error

// AfterCreateHook runs after an entity was persisted.
type AfterCreateHook func(ctx context.Context, schema *Schema, entity any) error

// BeforeUpdateHook runs before an entity is replaced.
type BeforeUpdateHook func(ctx context.Context, schema *Schema, entity any) error

// AfterUpdateHook runs after an entity was replaced.
type AfterUpdateHook func(ctx context.Context, schema *Schema, entity any) error

// BeforeDeleteHook runs before an entity is deleted.
type BeforeDeleteHook func(ctx context.Context, schema *Schema, id string) error

// AfterDeleteHook runs after an entity was deleted; entity is its last
// stored state.
type AfterDeleteHook func(ctx context.Context, schema *Schema, entity any) error

// OnCreator lets an entity type adjust itself right before first persistence,
// after hooks ran. Typical uses are stamping timestamps or deriving slugs.
type OnCreator interface {
	OnCreate(ctx context.Context) error
}
