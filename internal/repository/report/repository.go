package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"policyinsight/internal/types"
)

// Store archives generated documents as JSON objects.
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	URL(ctx context.Context, key string) (string, error)
}

var ErrNotFound = errors.New("report not found")

// Key returns the object key for a document archived under id.
func Key(docType types.DocumentType, id string) string {
	return string(docType) + "/" + strings.TrimSpace(id) + ".json"
}

// Archive stores doc under Key(doc.DocumentType, id) and returns the key.
func Archive(ctx context.Context, s Store, id string, doc types.Document) (string, error) {
	if s == nil {
		return "", fmt.Errorf("report store is nil")
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("report id is required")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	key := Key(doc.DocumentType, id)
	if err := s.Put(ctx, key, raw); err != nil {
		return "", fmt.Errorf("archive report %s: %w", key, err)
	}
	return key, nil
}

// Load reads back an archived document.
func Load(ctx context.Context, s Store, key string) (types.Document, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return types.Document{}, err
	}
	var doc types.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.Document{}, fmt.Errorf("decode report %s: %w", key, err)
	}
	return doc, nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	return key, nil
}
