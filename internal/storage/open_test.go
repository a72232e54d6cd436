package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	s, closeFn, err := Open(context.Background(), &config.Config{KVStore: config.StoreMemory}, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &MemoryStore{}, s)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{KVStore: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "kv.db")}

	s, closeFn, err := Open(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, s.Set(context.Background(), "k", []byte(`{"a":1}`)))
	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))
}

func TestOpen_MissingClient(t *testing.T) {
	for _, kind := range []string{config.StoreRedis, config.StorePostgres} {
		_, closeFn, err := Open(context.Background(), &config.Config{KVStore: kind}, nil, nil)
		assert.Error(t, err, kind)
		assert.NotNil(t, closeFn)
	}
}

func TestOpen_Unknown(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{KVStore: "etcd"}, nil, nil)

	assert.ErrorContains(t, err, "etcd")
}
