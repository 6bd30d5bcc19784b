package store

import (
	"context"
	"errors"

	"github.com/htran/stitchcount/internal/model"
)

// ErrNotFound is returned when a referenced project id no longer
// exists in the store.
var ErrNotFound = errors.New("project not found")

// Store defines the persistence interface consumed by the engine.
// Each call is its own transaction; no atomicity is assumed across
// calls. PutProject is an idempotent full-document replacement keyed
// by project id.
type Store interface {
	PutProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	SaveSession(ctx context.Context, s model.Session) error
	LoadSession(ctx context.Context) (model.Session, error)
}
