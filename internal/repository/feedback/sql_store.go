package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"policyinsight/internal/repository/sqlstore"
	"policyinsight/internal/types"
)

const (
	table         = "Feedback"
	listCacheSize = 256
	listCacheTTL  = 30 * time.Second
)

// columns are the canonical camelCase names in scan order.
var columns = []string{
	"id", "text", "sentiment", "sentimentConfidence", "reasoning", "language",
	"nuances", "isSpam", "legalRiskScore", "complianceDifficultyScore", "businessGrowthScore",
	"stakeholderType", "sector", "summary", "edgeCaseFlags", "embedding", "policyId",
	"createdAt", "updatedAt",
}

// SQLStore reads and writes the "Feedback" table on Postgres or SQLite.
// Columns are tried in camelCase first and in snake_case when the database
// rejects them.
type SQLStore struct {
	db  *sqlstore.DB
	now func() time.Time

	schemaOnce sync.Once
	schemaErr  error

	listCache *expirable.LRU[string, []types.FeedbackRecord]
}

func NewSQLStore(db *sqlstore.DB) *SQLStore {
	return &SQLStore{
		db:        db,
		now:       time.Now,
		listCache: expirable.NewLRU[string, []types.FeedbackRecord](listCacheSize, nil, listCacheTTL),
	}
}

// Migrate creates the canonical camelCase table when it is missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		d := s.db.Dialect
		_, s.schemaErr = s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS "Feedback" (
  "id" TEXT PRIMARY KEY,
  "text" TEXT NOT NULL,
  "sentiment" TEXT NOT NULL DEFAULT 'Neutral',
  "sentimentConfidence" DOUBLE PRECISION,
  "reasoning" TEXT,
  "language" TEXT NOT NULL DEFAULT 'English',
  "nuances" %[1]s,
  "isSpam" %[3]s NOT NULL DEFAULT FALSE,
  "legalRiskScore" INTEGER NOT NULL DEFAULT 0,
  "complianceDifficultyScore" INTEGER NOT NULL DEFAULT 0,
  "businessGrowthScore" INTEGER NOT NULL DEFAULT 0,
  "stakeholderType" TEXT,
  "sector" TEXT,
  "summary" TEXT,
  "edgeCaseFlags" %[1]s,
  "embedding" %[1]s,
  "policyId" TEXT,
  "createdAt" %[2]s NOT NULL,
  "updatedAt" %[2]s NOT NULL
)`, d.JSONType, d.TimeType, d.BoolType))
		if s.schemaErr != nil {
			return
		}
		_, s.schemaErr = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS "idx_feedback_policy" ON "Feedback" ("policyId")`)
	})
	return s.schemaErr
}

func (s *SQLStore) Insert(ctx context.Context, rec types.FeedbackRecord) (types.FeedbackRecord, error) {
	prepareInsert(&rec, s.now)
	_, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (struct{}, error) {
		q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			s.db.Dialect.Quote(table), s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Placeholders(1, len(columns)))
		_, err := s.db.ExecContext(ctx, q, insertArgs(rec)...)
		return struct{}{}, err
	})
	if err != nil {
		return types.FeedbackRecord{}, fmt.Errorf("insert feedback: %w", err)
	}
	s.listCache.Purge()
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (types.FeedbackRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.FeedbackRecord{}, ErrNotFound
	}
	rec, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (types.FeedbackRecord, error) {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = %s`,
			s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Quote(table), s.db.Dialect.Quote("id"), s.db.Dialect.Placeholder(1))
		return scanRecord(s.db.QueryRowContext(ctx, q, id))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return types.FeedbackRecord{}, ErrNotFound
	}
	if err != nil {
		return types.FeedbackRecord{}, fmt.Errorf("get feedback %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]types.FeedbackRecord, error) {
	f = f.Normalize()
	key := fmt.Sprintf("%+v", f)
	if cached, ok := s.listCache.Get(key); ok {
		return cloneAll(cached), nil
	}
	rows, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) ([]types.FeedbackRecord, error) {
		where, args := s.where(n, f)
		order := "DESC"
		if f.Ascending {
			order = "ASC"
		}
		q := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s %s`,
			s.db.Dialect.QuoteAll(n.Columns(columns)), s.db.Dialect.Quote(table), where, s.db.Dialect.Quote(n.Column("createdAt")), order)
		switch {
		case f.Limit > 0:
			args = append(args, f.Limit)
			q += " LIMIT " + s.db.Dialect.Placeholder(len(args))
		case f.Offset > 0 && s.db.Dialect.Name == sqlstore.SQLite.Name:
			// SQLite only accepts OFFSET after a LIMIT clause.
			q += " LIMIT -1"
		}
		if f.Offset > 0 {
			args = append(args, f.Offset)
			q += " OFFSET " + s.db.Dialect.Placeholder(len(args))
		}
		return s.query(ctx, q, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	s.listCache.Add(key, rows)
	return cloneAll(rows), nil
}

func (s *SQLStore) Count(ctx context.Context, f Filter) (int, error) {
	n, err := sqlstore.WithNamingFallback(ctx, func(ctx context.Context, n sqlstore.Naming) (int, error) {
		where, args := s.where(n, f)
		var count int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, s.db.Dialect.Quote(table), where), args...).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

func (s *SQLStore) where(n sqlstore.Naming, f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = %s", s.db.Dialect.Quote(n.Column(col)), s.db.Dialect.Placeholder(len(args))))
	}
	if f.PolicyID != "" {
		add("policyId", f.PolicyID)
	}
	if f.Sentiment != "" {
		add("sentiment", string(f.Sentiment))
	}
	if f.Language != "" {
		add("language", string(f.Language))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]types.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.FeedbackRecord, 0, 32)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row sqlstore.RowScanner) (types.FeedbackRecord, error) {
	var (
		rec                       types.FeedbackRecord
		sentiment, language       sql.NullString
		reasoning, pid            sql.NullString
		stakeholder, sector       sql.NullString
		summary                   sql.NullString
		conf                      sql.NullFloat64
		spam                      sql.NullBool
		legal, compliance, growth sql.NullInt64
		created, updated          sqlstore.Time
	)
	err := row.Scan(
		&rec.ID, &rec.Text, &sentiment, &conf, &reasoning, &language,
		sqlstore.JSON[[]string]{V: &rec.Nuances}, &spam, &legal, &compliance, &growth,
		&stakeholder, &sector, &summary, sqlstore.JSON[[]string]{V: &rec.EdgeCaseFlags},
		sqlstore.JSON[[]float32]{V: &rec.Embedding}, &pid, &created, &updated,
	)
	if err != nil {
		return types.FeedbackRecord{}, err
	}
	rec.Sentiment = types.SentimentNeutral
	if sentiment.Valid && sentiment.String != "" {
		rec.Sentiment = types.Sentiment(sentiment.String)
	}
	rec.Language = types.LanguageEnglish
	if language.Valid && language.String != "" {
		rec.Language = types.Language(language.String)
	}
	if conf.Valid {
		c := conf.Float64
		rec.SentimentConfidence = &c
	}
	rec.Reasoning = reasoning.String
	rec.IsSpam = spam.Valid && spam.Bool
	rec.LegalRiskScore = int(legal.Int64)
	rec.ComplianceScore = int(compliance.Int64)
	rec.BusinessGrowthScore = int(growth.Int64)
	rec.StakeholderType = stakeholder.String
	rec.Sector = sector.String
	rec.Summary = summary.String
	rec.PolicyID = pid.String
	rec.CreatedAt = created.Time
	rec.UpdatedAt = updated.Time
	if rec.Nuances == nil {
		rec.Nuances = []string{}
	}
	if rec.EdgeCaseFlags == nil {
		rec.EdgeCaseFlags = []string{}
	}
	return rec, nil
}

func insertArgs(r types.FeedbackRecord) []any {
	var conf any
	if r.SentimentConfidence != nil {
		conf = *r.SentimentConfidence
	}
	var embedding any
	if len(r.Embedding) > 0 {
		embedding = sqlstore.JSON[[]float32]{V: &r.Embedding}
	}
	return []any{
		r.ID, r.Text, string(r.Sentiment), conf, nullString(r.Reasoning), string(r.Language),
		sqlstore.JSON[[]string]{V: &r.Nuances}, r.IsSpam, r.LegalRiskScore, r.ComplianceScore, r.BusinessGrowthScore,
		nullString(r.StakeholderType), nullString(r.Sector), nullString(r.Summary),
		sqlstore.JSON[[]string]{V: &r.EdgeCaseFlags}, embedding, nullString(r.PolicyID),
		r.CreatedAt, r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func cloneAll(in []types.FeedbackRecord) []types.FeedbackRecord {
	out := make([]types.FeedbackRecord, len(in))
	for i, r := range in {
		out[i] = cloneRecord(r)
	}
	return out
}
