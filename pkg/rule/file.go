package rule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vigilsec/promptwall/pkg/types"
)

// FileRepository loads rules from keywords.txt and patterns.json under a base
// directory. A missing file is an empty contribution, not an error. The first
// successful load is cached for the lifetime of the repository; callers
// receive value copies so concurrent scans never share mutable state.
type FileRepository struct {
	baseDir string

	mu     sync.Mutex
	cached []types.Rule
	loaded bool
}

// NewFileRepository creates a repository rooted at baseDir.
func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

// LoadRules returns the full active set, reading the filesystem at most once.
func (r *FileRepository) LoadRules(ctx context.Context) ([]types.Rule, error) {
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
func (r *FileRepository) GetRule(ctx context.Context, id string) (*types.Rule, error) {
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

func (r *FileRepository) loadAll() ([]types.Rule, error) {
	seen := make(map[string]bool)
	var rules []types.Rule

	keywordsPath := filepath.Join(r.baseDir, KeywordsFile)
	if data, err := os.ReadFile(keywordsPath); err == nil {
		parsed, err := parseKeywords(data, keywordsPath, seen)
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading keyword rule file: %w", err)
	}

	patternsPath := filepath.Join(r.baseDir, PatternsFile)
	if data, err := os.ReadFile(patternsPath); err == nil {
		parsed, err := parsePatterns(data, patternsPath, seen)
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading pattern rule file: %w", err)
	}

	return rules, nil
}
