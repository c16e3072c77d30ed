package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/intake/pkg/adapters/sqlite"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	ports.RunRecordStoreContract(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "intake.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)

	rec := domain.NewSessionRecord("abc123")
	rec.Status = domain.StatusSubmittedRequest
	rec.Answers["stichpunkte"] = "x"
	require.NoError(t, store.Save(ctx, rec))

	rec.Answers["stichpunkte"] = "y"
	require.NoError(t, store.Save(ctx, rec), "second save upserts")
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmittedRequest, loaded.Status)
	assert.Equal(t, "y", loaded.Answers["stichpunkte"])

	ids, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, ids)
}
