package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/erazemk/recyclehub/internal/model"
)

// State is the load state of a View.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Backend is the item API a View reads from and mutates through.
type Backend interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, fields model.ItemFields) (*model.Item, error)
	SetStatus(ctx context.Context, id, status string) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ErrNotLoaded is returned by mutations on a View that has never loaded.
var ErrNotLoaded = errors.New("listing not loaded")

// View holds a fetched item list and derives filtered, sorted views of it.
// The fetched list is the authoritative local copy and is only replaced by
// Load or patched after a successful mutation.
type View struct {
	backend Backend

	mu    sync.Mutex
	state State
	items []model.Item
	err   error
}

// NewView returns an idle View over backend.
func NewView(backend Backend) *View {
	return &View{backend: backend}
}

// State returns the current state and the last load error, if any.
func (v *View) State() (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.err
}

// Load fetches the full item list, replacing local state.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	v.state = StateFetching
	v.err = nil
	v.mu.Unlock()

	items, err := v.backend.ListItems(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = StateError
		v.err = err
		return fmt.Errorf("loading items: %w", err)
	}
	v.items = items
	v.state = StateLoaded
	return nil
}

// Items returns the loaded items filtered and sorted by q.
func (v *View) Items(q Query) []model.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Apply(v.items, q)
}

// MarkRecycled sets an item's status to recycled and patches the local copy.
func (v *View) MarkRecycled(ctx context.Context, id string) error {
	if err := v.requireLoaded(); err != nil {
		return err
	}
	updated, err := v.backend.SetStatus(ctx, id, model.ItemStatusRecycled)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.items {
		if v.items[i].ID == id {
			v.items[i] = *updated
			break
		}
	}
	return nil
}

// Delete removes an item and drops it from the local copy.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.requireLoaded(); err != nil {
		return err
	}
	if err := v.backend.DeleteItem(ctx, id); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = slices.DeleteFunc(slices.Clone(v.items), func(it model.Item) bool {
		return it.ID == id
	})
	return nil
}

// Create adds an item and re-fetches the list.
func (v *View) Create(ctx context.Context, fields model.ItemFields) (*model.Item, error) {
	item, err := v.backend.CreateItem(ctx, fields)
	if err != nil {
		return nil, err
	}
	if err := v.Load(ctx); err != nil {
		return item, err
	}
	return item, nil
}

func (v *View) requireLoaded() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateLoaded {
		return ErrNotLoaded
	}
	return nil
}
