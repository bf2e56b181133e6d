package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisPersister, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisPersister(client, time.Hour), mr
}

func TestRedisPersister_SaveAndLoad(t *testing.T) {
	p, mr := setupTestRedis(t)
	ctx := context.Background()

	err := p.Save(ctx, "sess-1", []domain.CartItem{item("a", "M", 1000, 2)})
	require.NoError(t, err)

	raw, err := mr.Get("yeoubi-cart:sess-1")
	require.NoError(t, err)
	var stored map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Contains(t, stored, "items")
	assert.NotContains(t, stored, "open")

	items, err := p.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "1000", items[0].Product.Price.String())

	assert.Equal(t, time.Hour, mr.TTL("yeoubi-cart:sess-1"))
}

func TestRedisPersister_LoadMissing(t *testing.T) {
	p, _ := setupTestRedis(t)

	items, err := p.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestRedisPersister_LoadInvalidJSON(t *testing.T) {
	p, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("yeoubi-cart:bad", "{not json"))

	_, err := p.Load(context.Background(), "bad")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

type memoryPersister struct {
	mu    sync.Mutex
	data  map[string][]domain.CartItem
	loads int
	err   error
}

func (m *memoryPersister) Load(_ context.Context, sessionID string) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	return m.data[sessionID], nil
}

func (m *memoryPersister) Save(_ context.Context, sessionID string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = items
	return nil
}

func TestSessions_RestoresAndPersists(t *testing.T) {
	p := &memoryPersister{data: map[string][]domain.CartItem{
		"s1": {item("a", "M", 1000, 1)},
	}}
	sessions := NewSessions(p)
	ctx := context.Background()

	store, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.TotalItems())
	assert.False(t, store.IsOpen())

	store.AddItem(item("a", "M", 1000, 2))
	store.SetOpen(true)

	p.mu.Lock()
	saved := p.data["s1"]
	p.mu.Unlock()
	require.Len(t, saved, 1)
	assert.Equal(t, 3, saved[0].Quantity)

	again, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, store, again)
	assert.Equal(t, 1, p.loads)
}

func TestSessions_LoadError(t *testing.T) {
	p := &memoryPersister{data: map[string][]domain.CartItem{}, err: errors.New("redis down")}
	sessions := NewSessions(p)

	_, err := sessions.Get(context.Background(), "s1")
	require.ErrorContains(t, err, "redis down")
}

func TestSessions_SweepEvictsIdleAndReloads(t *testing.T) {
	p := &memoryPersister{data: map[string][]domain.CartItem{}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := NewSessions(p).WithClock(func() time.Time { return now })
	ctx := context.Background()

	store, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	store.AddItem(item("a", "M", 1000, 2))

	_, err = sessions.Get(ctx, "s2")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = sessions.Get(ctx, "s2")
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	evicted := sessions.Sweep(30*time.Minute, nil)
	assert.Equal(t, []string{"s1"}, evicted)
	assert.Equal(t, 1, sessions.Len())

	reloaded, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, store, reloaded)
	assert.Equal(t, 2, reloaded.TotalItems())
	assert.Equal(t, 3, p.loads)
}

func TestSessions_SweepKeepsBusy(t *testing.T) {
	p := &memoryPersister{data: map[string][]domain.CartItem{}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := NewSessions(p).WithClock(func() time.Time { return now })

	_, err := sessions.Get(context.Background(), "s1")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	evicted := sessions.Sweep(time.Minute, func(id string) bool { return id == "s1" })
	assert.Empty(t, evicted)
	assert.Equal(t, 1, sessions.Len())
}
