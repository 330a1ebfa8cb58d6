package rule

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/vigilsec/promptwall/pkg/types"
)

// FSRepository loads the rule pack from an fs.FS, typically the embedded
// default pack. Same file formats and caching semantics as FileRepository.
type FSRepository struct {
	fsys fs.FS

	mu     sync.Mutex
	cached []types.Rule
	loaded bool
}

// NewFSRepository creates a repository over the given filesystem.
func NewFSRepository(fsys fs.FS) *FSRepository {
	return &FSRepository{fsys: fsys}
}

// LoadRules returns the full active set, parsing the filesystem at most once.
func (r *FSRepository) LoadRules(ctx context.Context) ([]types.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		rules, err := r.loadAll()
		if err != nil {
			return nil, err
		}
		r.cached = rules
		r.loaded = true
	}

	out := make([]types.Rule, len(r.cached))
	copy(out, r.cached)
	return out, nil
}

// GetRule returns a single rule by id, or nil when absent.
func (r *FSRepository) GetRule(ctx context.Context, id string) (*types.Rule, error) {
	rules, err := r.LoadRules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		if rules[i].ID == id {
			return &rules[i], nil
		}
	}
	return nil, nil
}

func (r *FSRepository) loadAll() ([]types.Rule, error) {
	seen := make(map[string]bool)
	var rules []types.Rule

	if data, err := fs.ReadFile(r.fsys, KeywordsFile); err == nil {
		parsed, err := parseKeywords(data, KeywordsFile, seen)
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading keyword rule file: %w", err)
	}

	if data, err := fs.ReadFile(r.fsys, PatternsFile); err == nil {
		parsed, err := parsePatterns(data, PatternsFile, seen)
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading pattern rule file: %w", err)
	}

	return rules, nil
}
