package applications

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[app.ID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, appID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.data[appID]
	if !ok || app.UserID != userID {
		return Application{}, ErrNotFound
	}
	return cloneApp(app), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Application, 0)
	for _, app := range r.data {
		if app.UserID != userID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, cloneApp(app))
	}
	r.mu.RUnlock()

	cmp := compareFunc(filter.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if filter.Asc {
			a, b = b, a
		}
		if c := cmp(a, b); c != 0 {
			return c > 0
		}
		return a.ID > b.ID
	})
	return out, nil
}

// compareFunc returns a three-way comparison on the sort key.
func compareFunc(sortBy string) func(a, b Application) int {
	switch sortBy {
	case SortCompany:
		return func(a, b Application) int { return strings.Compare(a.Company, b.Company) }
	case SortPosition:
		return func(a, b Application) int { return strings.Compare(a.Position, b.Position) }
	case SortStatus:
		return func(a, b Application) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case SortUpdatedAt:
		return func(a, b Application) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return func(a, b Application) int { return a.ApplicationDate.Compare(b.ApplicationDate) }
	}
}

func (r *MemoryRepo) Update(ctx context.Context, userID, appID string, fn func(*Application) error) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.data[appID]
	if !ok || app.UserID != userID {
		return Application{}, ErrNotFound
	}
	working := cloneApp(app)
	if err := fn(&working); err != nil {
		return Application{}, err
	}
	working.ID = app.ID
	working.UserID = app.UserID
	r.data[appID] = cloneApp(working)
	return working, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, appID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.data[appID]
	if !ok || app.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, appID)
	return nil
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, app := range r.data {
		if app.UserID == userID {
			delete(r.data, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) DeleteByResume(ctx context.Context, userID, resumeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, app := range r.data {
		if app.UserID == userID && app.ResumeID == resumeID {
			delete(r.data, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Status]int)
	for _, app := range r.data {
		if app.UserID == userID {
			counts[app.Status]++
		}
	}
	return counts, nil
}

func cloneApp(a Application) Application {
	if a.FollowUpDate != nil {
		t := *a.FollowUpDate
		a.FollowUpDate = &t
	}
	return a
}
