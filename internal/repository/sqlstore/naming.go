package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Naming is a column naming convention.
type Naming int

const (
	Camel Naming = iota
	Snake
)

func (n Naming) String() string {
	if n == Snake {
		return "snake_case"
	}
	return "camelCase"
}

// Column renders a canonical camelCase column name in this convention.
func (n Naming) Column(camel string) string {
	if n == Camel {
		return camel
	}
	return ToSnake(camel)
}

// Columns renders a list of canonical names.
func (n Naming) Columns(camel []string) []string {
	out := make([]string, len(camel))
	for i, c := range camel {
		out[i] = n.Column(c)
	}
	return out
}

// ToSnake converts camelCase to snake_case.
func ToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WithNamingFallback runs op with camelCase columns and, when the database
// rejects a column, once more with snake_case. If both are rejected the
// error wraps ErrSchemaMismatch.
func WithNamingFallback[T any](ctx context.Context, op func(context.Context, Naming) (T, error)) (T, error) {
	out, err := op(ctx, Camel)
	if err == nil || !IsUndefinedColumn(err) {
		return out, err
	}
	out, err2 := op(ctx, Snake)
	if err2 == nil {
		return out, nil
	}
	if IsUndefinedColumn(err2) {
		var zero T
		return zero, fmt.Errorf("%w: %v; %v", ErrSchemaMismatch, err, err2)
	}
	return out, err2
}
