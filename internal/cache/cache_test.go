package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestMemoryBackendExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryBackendDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, m.Delete(ctx, "a"))

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "b")
	assert.NoError(t, err)
}

func TestMemoryBackendIncrWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, err := m.Incr(ctx, "ip", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	now = now.Add(time.Minute)
	n, err := m.Incr(ctx, "ip", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryBackendSweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := m.Incr(ctx, "rate:"+ip, time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, m.Set(ctx, "keep", []byte("v"), 0))
	assert.Len(t, m.items, 4)

	now = now.Add(2 * time.Minute)
	_, err := m.Incr(ctx, "rate:10.0.0.4", time.Minute)
	require.NoError(t, err)
	assert.Len(t, m.items, 2)
	assert.Contains(t, m.items, "keep")
	assert.Contains(t, m.items, "rate:10.0.0.4")
}

func TestMemoryBackendSetIfVersion(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	v, err := m.Version(ctx, "ver")
	require.NoError(t, err)
	ok, err := m.SetIfVersion(ctx, "k", []byte("1"), 0, "ver", v)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Bump(ctx, "ver"))
	ok, err = m.SetIfVersion(ctx, "k", []byte("2"), 0, "ver", v)
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestLoadSkipsCachingWhenInvalidatedMidFetch(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(NewMemoryBackend(), time.Minute, nil)
	rows := []item{{ID: 1, Name: "a"}}
	calls := 0
	fetch := func(context.Context) ([]item, error) {
		calls++
		snapshot := append([]item(nil), rows...)
		if calls == 1 {
			// a write lands and invalidates after the read was taken
			rows = append(rows, item{ID: 2, Name: "b"})
			c.Invalidate(ctx, KeyVolunteers)
		}
		return snapshot, nil
	}

	first, err := Load(ctx, c, KeyVolunteers, fetch)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := Load(ctx, c, KeyVolunteers, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, second)

	third, err := Load(ctx, c, KeyVolunteers, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, second, third)
}

func TestLoadCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(NewMemoryBackend(), time.Minute, zap.NewNop())
	calls := 0
	fetch := func(context.Context) ([]item, error) {
		calls++
		return []item{{ID: calls, Name: "x"}}, nil
	}

	first, err := Load(ctx, c, KeyEvents, fetch)
	require.NoError(t, err)
	second, err := Load(ctx, c, KeyEvents, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	c.Invalidate(ctx, KeyEvents)
	third, err := Load(ctx, c, KeyEvents, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third[0].ID)
}

func TestLoadKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(NewMemoryBackend(), time.Minute, nil)
	events := 0
	news := 0
	_, _ = Load(ctx, c, KeyEvents, func(context.Context) ([]item, error) { events++; return nil, nil })
	_, _ = Load(ctx, c, KeyNewsPosts, func(context.Context) ([]item, error) { news++; return nil, nil })

	c.Invalidate(ctx, KeyNewsPosts)
	_, _ = Load(ctx, c, KeyEvents, func(context.Context) ([]item, error) { events++; return nil, nil })
	_, _ = Load(ctx, c, KeyNewsPosts, func(context.Context) ([]item, error) { news++; return nil, nil })
	assert.Equal(t, 1, events)
	assert.Equal(t, 2, news)
}

func TestLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(NewMemoryBackend(), time.Minute, nil)
	_, err := Load(ctx, c, KeyDonations, func(context.Context) ([]item, error) { return nil, errors.New("db down") })
	require.Error(t, err)

	got, err := Load(ctx, c, KeyDonations, func(context.Context) ([]item, error) { return []item{{ID: 7}}, nil })
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("conn refused")
}
func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("conn refused")
}
func (failingBackend) Delete(context.Context, ...string) error { return errors.New("conn refused") }
func (failingBackend) Version(context.Context, string) (int64, error) {
	return 0, errors.New("conn refused")
}
func (failingBackend) Bump(context.Context, ...string) error { return errors.New("conn refused") }
func (failingBackend) SetIfVersion(context.Context, string, []byte, time.Duration, string, int64) (bool, error) {
	return false, errors.New("conn refused")
}

func TestLoadFallsBackToFetchWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(failingBackend{}, time.Minute, nil)
	got, err := Load(ctx, c, KeyVolunteers, func(context.Context) ([]item, error) { return []item{{ID: 1}}, nil })
	require.NoError(t, err)
	assert.Len(t, got, 1)
	c.Invalidate(ctx, KeyVolunteers)
}
