package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "legal:1-year", Key("legal", "1-year"))
}

func TestNew_Backends(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	require.NoError(t, c.Close())

	c, err = New(Config{Backend: BackendFile, File: filepath.Join(t.TempDir(), "cache.json")})
	require.NoError(t, err)
	assert.IsType(t, &File{}, c)
	require.NoError(t, c.Close())

	mr := miniredis.RunT(t)
	c, err = New(Config{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)
	require.NoError(t, c.Close())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Backend: "memcached"})
	assert.Error(t, err)

	_, err = New(Config{Backend: BackendFile})
	assert.Error(t, err)

	_, err = New(Config{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = New(Config{Backend: BackendRedis, RedisURL: "not a url"})
	assert.Error(t, err)
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4, time.Hour)

	_, err := m.Get(ctx, "legal:1-year")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "legal:1-year", "summary"))
	v, err := m.Get(ctx, "legal:1-year")
	require.NoError(t, err)
	assert.Equal(t, "summary", v)
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, _ = m.Get(ctx, "a")
	require.NoError(t, m.Set(ctx, "c", "3"))

	assert.Equal(t, 2, m.Len())
	_, err := m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4, 20*time.Millisecond)
	require.NoError(t, m.Set(ctx, "k", "v"))

	assert.Eventually(t, func() bool {
		_, err := m.Get(ctx, "k")
		return err == ErrMiss
	}, time.Second, 10*time.Millisecond)
}

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestFile_PersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")

	f, err := LoadFile(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "legal:1-year", "summary"))
	require.NoError(t, f.Close())

	f2, err := LoadFile(path, time.Hour)
	require.NoError(t, err)
	defer f2.Close()

	v, err := f2.Get(ctx, "legal:1-year")
	require.NoError(t, err)
	assert.Equal(t, "summary", v)
}

func TestFile_Expiry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	f, err := loadFile(path, time.Hour, clock.now)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "k", "v"))

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = f.Get(ctx, "k")
	assert.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	// Expired entries are not loaded back.
	f2, err := loadFile(path, time.Hour, clock.now)
	require.NoError(t, err)
	assert.Empty(t, f2.entries)
}

func TestFile_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	f, err := loadFile(path, time.Hour, clock.now)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "old", "1"))
	clock.t = clock.t.Add(30 * time.Minute)
	require.NoError(t, f.Set(ctx, "new", "2"))

	clock.t = clock.t.Add(45 * time.Minute)
	require.NoError(t, f.removeExpired())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fd fileData
	require.NoError(t, json.Unmarshal(data, &fd))
	assert.Len(t, fd.Entries, 1)
	assert.Contains(t, fd.Entries, "new")
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := LoadFile(path, time.Hour)
	assert.Error(t, err)
}

func TestFile_SetFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "missing-dir", "cache.json")

	f, err := loadFile(path, time.Hour, time.Now)
	require.NoError(t, err)

	assert.Error(t, f.Set(ctx, "k", "v"))
	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestFile_CloseTwice(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "cache.json"), time.Hour)
	require.NoError(t, err)
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	defer r.Close()

	require.NoError(t, r.Ping(ctx))

	_, err := r.Get(ctx, "legal:1-year")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "legal:1-year", "summary"))
	v, err := r.Get(ctx, "legal:1-year")
	require.NoError(t, err)
	assert.Equal(t, "summary", v)

	assert.True(t, mr.Exists("catchup:legal:1-year"))
	assert.Equal(t, time.Hour, mr.TTL("catchup:legal:1-year"))
}

func TestRedis_Expires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_ConnectionError(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), time.Minute)
	defer r.Close()
	mr.Close()

	_, err = r.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
