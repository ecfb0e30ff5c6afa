package repository

import (
	"testing"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newStore(ttl time.Duration) (*PageStore, *int) {
	created := 0
	return NewPageStore(ttl, func() *calculator.Controller {
		created++
		return calculator.NewController(zap.NewNop(), nil, nil, nil)
	}), &created
}

func TestPageStore_CreatesAndReuses(t *testing.T) {
	store, created := newStore(time.Hour)

	id, first := store.Get("")
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, *created)

	sameID, again := store.Get(id)
	assert.Equal(t, id, sameID)
	assert.Same(t, first, again)
	assert.Equal(t, 1, *created)
	assert.Equal(t, 1, store.Len())
}

func TestPageStore_UnknownIDGetsFreshPage(t *testing.T) {
	store, created := newStore(time.Hour)

	id, _ := store.Get("stale-id")
	assert.NotEqual(t, "stale-id", id)
	assert.Equal(t, 1, *created)
	assert.Equal(t, 1, store.Len())
}

func TestPageStore_Expiry(t *testing.T) {
	store, _ := newStore(20 * time.Millisecond)
	id, _ := store.Get("")

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	fresh, _ := store.Get(id)
	assert.NotEqual(t, id, fresh, "an expired page is not revived")
}
