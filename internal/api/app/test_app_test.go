package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/api/config"
	"policyinsight/internal/repository/report"
	"policyinsight/internal/types"
)

func TestInitStores_SQLiteWithMigration(t *testing.T) {
	cfg := &config.Config{SQLitePath: filepath.Join(t.TempDir(), "app.db"), DBMigrate: true}
	st, err := initStores(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.Equal(t, "sqlite", st.kind)
	_, ok := st.report.(*report.MemoryStore)
	assert.True(t, ok)

	rec, err := st.feedback.Insert(context.Background(), types.FeedbackRecord{Text: "stored through the app wiring"})
	require.NoError(t, err)
	got, err := st.feedback.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Text, got.Text)

	_, err = st.policy.Insert(context.Background(), types.Policy{Title: "Rules"})
	require.NoError(t, err)
}

func TestInitStores_Memory(t *testing.T) {
	st, err := initStores(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", st.kind)
	assert.Nil(t, st.db)
	assert.NoError(t, st.Close())
}

func TestChooseReportStore_S3(t *testing.T) {
	cfg := &config.Config{Report: config.ReportConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"}}
	s, err := chooseReportStore(cfg)
	require.NoError(t, err)
	_, ok := s.(*report.S3Store)
	assert.True(t, ok)
}

func TestChooseReportStore_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s, err := chooseReportStore(&config.Config{Report: config.ReportConfig{Dir: dir}})
	require.NoError(t, err)
	_, ok := s.(*report.DiskStore)
	assert.True(t, ok)
	assert.DirExists(t, dir)
}

func TestNewGateway_NoKeys(t *testing.T) {
	gw := NewGateway(context.Background(), config.LLMConfig{Timeout: time.Second})
	assert.Empty(t, gw.Providers())
	assert.Equal(t, "local-hash", gw.EmbedderName())
}

func TestNewGateway_SecondaryPreference(t *testing.T) {
	gw := NewGateway(context.Background(), config.LLMConfig{
		GroqAPIKey:        "g",
		AnthropicAPIKey:   "a",
		SecondaryProvider: "anthropic",
		Timeout:           time.Second,
	})
	require.Len(t, gw.Providers(), 1)
	assert.Contains(t, gw.Providers()[0], "Anthropic")

	gw = NewGateway(context.Background(), config.LLMConfig{AnthropicAPIKey: "a", SecondaryProvider: "groq", Timeout: time.Second})
	require.Len(t, gw.Providers(), 1)
	assert.Contains(t, gw.Providers()[0], "Anthropic")
}
