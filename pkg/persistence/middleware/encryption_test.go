package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func seal(t *testing.T, cfg middleware.EncryptionConfig, next ports.RecordStore) ports.RecordStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	secure := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	rec := domain.NewSessionRecord("abc123")
	rec.Status = domain.StatusInProgress
	rec.RequesterEmail = "jane@example.org"
	rec.Answers["stichpunkte"] = "secret notes"
	rec.Classification = domain.Classification{"projectClass": "strategic"}
	require.NoError(t, secure.Save(ctx, rec))

	stored, err := underlying.Load(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status, "status stays readable")
	assert.Empty(t, stored.RequesterEmail)
	assert.Empty(t, stored.Classification)
	assert.NotContains(t, stored.Answers, "stichpunkte")
	assert.Contains(t, stored.Answers, middleware.EnvelopeKey)

	loaded, err := secure.Load(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", loaded.RequesterEmail)
	assert.Equal(t, "secret notes", loaded.Answers["stichpunkte"])
	assert.Equal(t, "strategic", loaded.Classification.ProjectClass())
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	rec := domain.NewSessionRecord("rotation")
	rec.Answers["stichpunkte"] = "sealed with old key"
	require.NoError(t, seal(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying).Save(ctx, rec))

	rotated := seal(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := rotated.Load(ctx, "rotation")
	require.NoError(t, err)
	assert.Equal(t, "sealed with old key", loaded.Answers["stichpunkte"])

	require.NoError(t, rotated.Save(ctx, loaded))
	_, err = seal(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying).Load(ctx, "rotation")
	assert.Error(t, err, "re-saved record must no longer open with the retired key")
}

func TestEncryptionMiddleware_WrongKey(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying).Save(ctx, domain.NewSessionRecord("x")))

	_, err := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying).Load(ctx, "x")
	assert.ErrorContains(t, err, "failed to decrypt record")
}

func TestEncryptionMiddleware_PlainRecordRejected(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, domain.NewSessionRecord("plain")))

	_, err := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_NotFoundPassesThrough(t *testing.T) {
	_, err := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewEncryptionMiddleware_InvalidKeys(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    make([]byte, middleware.KeySize),
		FallbackKeys: [][]byte{[]byte("nope")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
