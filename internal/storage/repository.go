package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dompetku/internal/core"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Setting is one namespaced preference entry (currently just the theme).
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Collection gives typed access to one JSON-array blob per user. Unparseable
// stored data degrades to an empty collection rather than an error; the write
// path always re-encodes cleanly.
type Collection[T any] struct {
	store *Store
	name  string
}

// List decodes the user's collection.
func (c Collection[T]) List(ctx context.Context, userID string) ([]T, error) {
	raw, err := c.store.Get(ctx, userID, c.name)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.WarnContext(ctx, "Stored collection is unreadable, treating as empty",
			"user", userID, "collection", c.name, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Replace overwrites the user's collection with items.
func (c Collection[T]) Replace(ctx context.Context, userID string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.name, err)
	}
	return c.store.Put(ctx, userID, c.name, data)
}

// Mutate runs a read-modify-write cycle under the store lock. fn receives the
// decoded items and returns the replacement slice.
func (c Collection[T]) Mutate(ctx context.Context, userID string, fn func([]T) ([]T, error)) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := c.List(ctx, userID)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.Replace(ctx, userID, next)
}

// Repository bundles the typed collections for every entity kind. It is the
// single persistence seam: handlers read slices out, hand them to the
// aggregation engine, and write slices back.
type Repository struct {
	store *Store

	Transactions  Collection[core.Transaction]
	Budgets       Collection[core.Budget]
	Subscriptions Collection[core.Subscription]
	Goals         Collection[core.Goal]

	categories Collection[core.Category]
	settings   Collection[Setting]
	users      Collection[core.User]
}

func NewRepository(store *Store) *Repository {
	return &Repository{
		store:         store,
		Transactions:  Collection[core.Transaction]{store: store, name: ColTransactions},
		Budgets:       Collection[core.Budget]{store: store, name: ColBudgets},
		Subscriptions: Collection[core.Subscription]{store: store, name: ColSubscriptions},
		Goals:         Collection[core.Goal]{store: store, name: ColGoals},
		categories:    Collection[core.Category]{store: store, name: ColCategories},
		settings:      Collection[Setting]{store: store, name: ColSettings},
		users:         Collection[core.User]{store: store, name: "users"},
	}
}

// Ping reports whether the backing store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Categories returns the user's categories, writing the default seed first if
// the collection is empty. Seeding happens at most once per user unless the
// data is cleared.
func (r *Repository) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	cats, err := r.categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cats) > 0 {
		return cats, nil
	}

	cats = core.DefaultCategories()
	if err := r.categories.Replace(ctx, userID, cats); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default categories", "user", userID, "count", len(cats))
	return cats, nil
}

// Theme reads the user's theme preference; empty means "system".
func (r *Repository) Theme(ctx context.Context, userID string) (string, error) {
	settings, err := r.settings.List(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, s := range settings {
		if s.Key == "theme" {
			return s.Value, nil
		}
	}
	return "system", nil
}

// SetTheme stores the user's theme preference.
func (r *Repository) SetTheme(ctx context.Context, userID, theme string) error {
	return r.settings.Mutate(ctx, userID, func(settings []Setting) ([]Setting, error) {
		for i, s := range settings {
			if s.Key == "theme" {
				settings[i].Value = theme
				return settings, nil
			}
		}
		return append(settings, Setting{Key: "theme", Value: theme}), nil
	})
}

// ClearData wipes every collection in the user's namespace. Categories reseed
// on the next read.
func (r *Repository) ClearData(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.DeleteAll(ctx, userID)
}

// CreateUser appends a user to the registry. Names are unique,
// case-insensitively.
func (r *Repository) CreateUser(ctx context.Context, user core.User) error {
	return r.users.Mutate(ctx, SystemNamespace, func(users []core.User) ([]core.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Name, user.Name) {
				return nil, ErrUserExists
			}
		}
		return append(users, user), nil
	})
}

// FindUserByName looks a user up by registry name, case-insensitively.
func (r *Repository) FindUserByName(ctx context.Context, name string) (core.User, error) {
	users, err := r.users.List(ctx, SystemNamespace)
	if err != nil {
		return core.User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return core.User{}, ErrUserNotFound
}

// FindUserByID looks a user up by id.
func (r *Repository) FindUserByID(ctx context.Context, id string) (core.User, error) {
	users, err := r.users.List(ctx, SystemNamespace)
	if err != nil {
		return core.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, ErrUserNotFound
}
