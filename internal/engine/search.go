package engine

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

// Searcher indexes entity names for free-text lookup. Relevance is a
// collaborator concern; the engine only feeds the index and queries it.
type Searcher interface {
	Index(ctx context.Context, summary EntitySummary) error
	Remove(ctx context.Context, kind domain.EntityKind, ref domain.Ref) error
	Search(ctx context.Context, query string, limit int) ([]EntitySummary, error)
}

type searchKey struct {
	kind domain.EntityKind
	ref  domain.Ref
}

// InMemorySearcher is a substring-match index good enough for a single
// user's workspace.
type InMemorySearcher struct {
	mu      sync.RWMutex
	entries map[searchKey]EntitySummary
}

func NewInMemorySearcher() *InMemorySearcher {
	return &InMemorySearcher{entries: map[searchKey]EntitySummary{}}
}

func (s *InMemorySearcher) Index(_ context.Context, summary EntitySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[searchKey{kind: summary.Kind, ref: summary.Ref}] = summary
	return nil
}

func (s *InMemorySearcher) Remove(_ context.Context, kind domain.EntityKind, ref domain.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, searchKey{kind: kind, ref: ref})
	return nil
}

func (s *InMemorySearcher) Search(_ context.Context, query string, limit int) ([]EntitySummary, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []EntitySummary
	for _, summary := range s.entries {
		if needle == "" || strings.Contains(strings.ToLower(summary.Name), needle) {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Ref < out[j].Ref
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SQLSearcher keeps the index in the database so it survives process
// restarts. The CLI uses it; tests favor the in-memory one.
type SQLSearcher struct {
	db *sql.DB
}

func NewSQLSearcher(db *sql.DB) *SQLSearcher {
	return &SQLSearcher{db: db}
}

func (s *SQLSearcher) Index(ctx context.Context, summary EntitySummary) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO search_index (kind, ref, name) VALUES (?, ?, ?)
		ON CONFLICT (kind, ref) DO UPDATE SET name = excluded.name`,
		string(summary.Kind), int64(summary.Ref), summary.Name)
	return err
}

func (s *SQLSearcher) Remove(ctx context.Context, kind domain.EntityKind, ref domain.Ref) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_index WHERE kind = ? AND ref = ?`,
		string(kind), int64(ref))
	return err
}

func (s *SQLSearcher) Search(ctx context.Context, query string, limit int) ([]EntitySummary, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT kind, ref, name FROM search_index
		WHERE instr(lower(name), ?) > 0 OR ? = ''
		ORDER BY kind, ref LIMIT ?`, needle, needle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntitySummary
	for rows.Next() {
		var kind string
		var ref int64
		var name string
		if err := rows.Scan(&kind, &ref, &name); err != nil {
			return nil, err
		}
		out = append(out, EntitySummary{Kind: domain.EntityKind(kind), Ref: domain.Ref(ref), Name: name})
	}
	return out, rows.Err()
}
