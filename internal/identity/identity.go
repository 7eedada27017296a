// Package identity tracks which stored gist holds the user's resume. The
// identifier cache is session-scoped and survives until a fetch through it
// fails, at which point the listing path is retried exactly once.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/zazer0/resume-mcp/internal/gist"
	"github.com/zazer0/resume-mcp/internal/resume"
)

// ErrNotFound signals that no stored resume exists anywhere. A valid
// terminal state, not a fault: callers may fall back to template creation.
var ErrNotFound = errors.New("no stored resume found")

// Storage is the slice of the gist client the tracker needs.
type Storage interface {
	List(ctx context.Context) (*gist.Gists, error)
	Get(ctx context.Context, id string) (*gist.Gist, error)
}

// Tracker resolves and caches the storage identifier of the resume gist.
type Tracker struct {
	storage Storage
	logger  *zap.Logger

	mu       sync.Mutex
	cachedID string
}

func New(storage Storage, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{storage: storage, logger: logger}
}

// Resolve returns the identifier of the most recently updated gist holding
// a resume.json file, using the session cache when warm. Returns
// ErrNotFound when no such gist exists.
func (t *Tracker) Resolve(ctx context.Context) (string, error) {
	t.mu.Lock()
	cached := t.cachedID
	t.mu.Unlock()

	if cached != "" {
		return cached, nil
	}

	id, err := t.lookup(ctx)
	if err != nil {
		return "", err
	}

	t.Remember(id)
	return id, nil
}

// Remember primes the cache with a known identifier, e.g. after creating
// the resume gist.
func (t *Tracker) Remember(id string) {
	t.mu.Lock()
	t.cachedID = id
	t.mu.Unlock()
}

// Invalidate clears the cached identifier.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	t.cachedID = ""
	t.mu.Unlock()
}

// Fetch resolves the identifier and loads the resume document, attaching
// the identifier to the returned resume. When a cached identifier turns out
// stale, the cache is dropped and the listing path is retried once.
func (t *Tracker) Fetch(ctx context.Context) (*resume.Resume, *gist.Gist, error) {
	id, err := t.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}

	g, err := t.storage.Get(ctx, id)
	if err != nil {
		t.logger.Warn("cached resume gist fetch failed, retrying listing",
			zap.String("gist_id", id),
			zap.Error(err),
		)
		t.Invalidate()

		id, err = t.Resolve(ctx)
		if err != nil {
			return nil, nil, err
		}

		g, err = t.storage.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch resume gist %s: %w", id, err)
		}
	}

	file := g.File(resume.Filename)
	if file == nil {
		return nil, nil, fmt.Errorf("gist %s has no %s file", id, resume.Filename)
	}

	r, err := resume.Parse([]byte(file.Content))
	if err != nil {
		return nil, nil, err
	}
	r.GistID = g.ID

	return r, g, nil
}

func (t *Tracker) lookup(ctx context.Context) (string, error) {
	gists, err := t.storage.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing gists: %w", err)
	}

	matches := gists.WithFile(resume.Filename)
	if matches.Len() == 0 {
		return "", ErrNotFound
	}

	sort.SliceStable(matches.Items, func(i, j int) bool {
		return matches.Items[i].UpdatedAt.After(matches.Items[j].UpdatedAt)
	})

	winner := matches.Items[0]

	t.logger.Debug("resolved resume gist",
		zap.String("gist_id", winner.ID),
		zap.Int("candidates", matches.Len()),
	)

	return winner.ID, nil
}
