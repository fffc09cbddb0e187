// package models defines the records shared by the enrichment pipeline, its reports and their storage
package models

import (
	"time"
)

// Model is a record persisted in the history database.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the storage contract for a [Model].
//
// Get and List never return soft-deleted records; List criteria keys are
// defined by each implementation.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
