package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"policyinsight/internal/repository/sqlstore"
	"policyinsight/internal/types"
)

const table = "Policy"

var columns = []string{"id", "title", "description", "fullText", "version", "status", "category", "createdAt", "updatedAt"}

// SQLStore reads and writes the "Policy" table with the same naming
// fallback as the feedback store.
type SQLStore struct {
	db  *sqlstore.DB
	now func() time.Time

	schemaOnce sync.Once
	schemaErr  error
}

func NewSQLStore(db *sqlstore.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS "Policy" (
  "id" TEXT PRIMARY KEY,
  "title" TEXT NOT NULL,
  "description" TEXT,
  "fullText" TEXT,
  "version" TEXT NOT NULL DEFAULT '1.0',
  "status" TEXT NOT NULL DEFAULT 'draft',
  "category" TEXT,
  "createdAt" %[1]s NOT NULL,
  "updatedAt" %[1]s NOT NULL
)`, s.db.Dialect.TimeType))
	})
	return s.schemaErr
}

func (s *SQLStore) Insert(ctx context.Context, p types.Policy) (types.Policy, error) {
	if err := Validate(p); err != nil {
		return types.Policy{}, err
	}
	prepareInsert(&p, s.now)
	_, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (struct{}, error) {
		q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			s.db.Dialect.Quote(table), s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Placeholders(1, len(columns)))
		_, err := s.db.ExecContext(ctx, q,
			p.ID, p.Title, p.Description, p.FullText, p.Version, string(p.Status),
			sql.NullString{String: p.Category, Valid: p.Category != ""}, p.CreatedAt, p.UpdatedAt)
		return struct{}{}, err
	})
	if err != nil {
		return types.Policy{}, fmt.Errorf("insert policy: %w", err)
	}
	return p, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (types.Policy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Policy{}, ErrNotFound
	}
	p, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (types.Policy, error) {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = %s`,
			s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Quote(table), s.db.Dialect.Quote("id"), s.db.Dialect.Placeholder(1))
		return scanPolicy(s.db.QueryRowContext(ctx, q, id))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return types.Policy{}, ErrNotFound
	}
	if err != nil {
		return types.Policy{}, fmt.Errorf("get policy %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]types.Policy, error) {
	f = f.Normalize()
	out, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) ([]types.Policy, error) {
		var (
			where string
			args  []any
		)
		if f.Status != "" {
			args = append(args, string(f.Status))
			where = fmt.Sprintf(" WHERE %s = %s", s.db.Dialect.Quote("status"), s.db.Dialect.Placeholder(len(args)))
		}
		args = append(args, f.Limit, f.Offset)
		q := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC LIMIT %s OFFSET %s`,
			s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Quote(table), where,
			s.db.Dialect.Quote(n.Column("createdAt")), s.db.Dialect.Placeholder(len(args)-1), s.db.Dialect.Placeholder(len(args)))
		return s.query(ctx, q, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Active(ctx context.Context) (types.Policy, error) {
	p, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (types.Policy, error) {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IN (%s) ORDER BY %s DESC LIMIT 1`,
			s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Quote(table), s.db.Dialect.Quote("status"),
			s.db.Dialect.Placeholders(1, len(activeStatuses)), s.db.Dialect.Quote(n.Column("updatedAt")))
		args := make([]any, len(activeStatuses))
		for i, st := range activeStatuses {
			args[i] = string(st)
		}
		return scanPolicy(s.db.QueryRowContext(ctx, q, args...))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return types.Policy{}, ErrNotFound
	}
	if err != nil {
		return types.Policy{}, fmt.Errorf("active policy: %w", err)
	}
	return p, nil
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]types.Policy, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.Policy, 0, 16)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPolicy(row sqlstore.RowScanner) (types.Policy, error) {
	var (
		p                                   types.Policy
		description, fullText, version, cat sql.NullString
		status                              sql.NullString
		created, updated                    sqlstore.Time
	)
	if err := row.Scan(&p.ID, &p.Title, &description, &fullText, &version, &status, &cat, &created, &updated); err != nil {
		return types.Policy{}, err
	}
	p.Description = description.String
	p.FullText = fullText.String
	p.Version = DefaultVersion
	if version.String != "" {
		p.Version = version.String
	}
	p.Status = types.PolicyDraft
	if status.String != "" {
		p.Status = types.PolicyStatus(status.String)
	}
	p.Category = cat.String
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return p, nil
}
