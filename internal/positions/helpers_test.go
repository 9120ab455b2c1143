package positions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db"
	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

type testEnv struct {
	db    *gorm.DB
	repo  *Repository
	svc   Service
	logs  *bytes.Buffer
	cache *memoryCache
	media *memoryMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := openTestDB(t)
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: logs})
	repo := NewRepository(conn)
	cache := newMemoryCache()
	media := newMemoryMedia()
	svc, err := NewService(repo, db.NewFromConn(conn), logg, Options{
		Listing:        config.ListingConfig{DefaultPageSize: 2, MaxPageSize: 3},
		Cache:          cache,
		SuggestionsTTL: time.Minute,
		Media:          media,
	})
	require.NoError(t, err)
	return &testEnv{db: conn, repo: repo, svc: svc, logs: logs, cache: cache, media: media}
}

func mustCreatePosition(t *testing.T, env *testEnv, in PositionInput) *PositionDTO {
	t.Helper()
	dto, err := env.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return dto
}

type memoryCache struct {
	generations map[string]int64
	values      map[string][]byte
	reads       int
	hits        int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{generations: map[string]int64{}, values: map[string][]byte{}}
}

func (m *memoryCache) Generation(_ context.Context, scope string) (int64, error) {
	return m.generations[scope], nil
}

func (m *memoryCache) BumpGeneration(_ context.Context, scope string) (int64, error) {
	m.generations[scope]++
	return m.generations[scope], nil
}

func (m *memoryCache) SuggestionsKey(field string, generation int64) string {
	return fmt.Sprintf("qr:suggestions:%s:%d", field, generation)
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	m.reads++
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

type memoryMedia struct {
	files map[string][]byte
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{files: map[string][]byte{}}
}

func (m *memoryMedia) Save(_ context.Context, rel string, body io.Reader) (int64, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}
	m.files[rel] = raw
	return int64(len(raw)), nil
}

func (m *memoryMedia) Remove(_ context.Context, rel string) error {
	delete(m.files, rel)
	return nil
}
