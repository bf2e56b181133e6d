package cart

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, size string, price int64, qty int) domain.CartItem {
	return domain.CartItem{
		Product: domain.ProductSnapshot{
			ID:    id,
			Name:  "Product " + id,
			Price: decimal.NewFromInt(price),
			Sizes: []string{"S", "M", "L"},
		},
		Size:     size,
		Quantity: qty,
	}
}

func TestAddItem_MergesSameProductAndSize(t *testing.T) {
	s := NewStore(nil)

	s.AddItem(item("a", "M", 1000, 1))
	s.AddItem(item("a", "M", 1000, 2))
	s.AddItem(item("a", "M", 1000, 4))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestAddItem_DifferentSizeIsSeparateLine(t *testing.T) {
	s := NewStore(nil)

	s.AddItem(item("a", "M", 1000, 1))
	s.AddItem(item("a", "L", 1000, 1))
	s.AddItem(item("b", "M", 500, 1))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "M", items[0].Size)
	assert.Equal(t, "L", items[1].Size)
	assert.Equal(t, "b", items[2].Product.ID)
}

func TestAddItem_NormalizesQuantity(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(item("a", "M", 1000, 0))

	assert.Equal(t, 1, s.TotalItems())
}

func TestUpdateQuantity(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 1000, 1)})

	s.UpdateQuantity("a", "M", 5)
	assert.Equal(t, 5, s.Items()[0].Quantity)

	s.UpdateQuantity("missing", "M", 3)
	assert.Equal(t, 5, s.TotalItems())
}

func TestUpdateQuantity_ZeroEqualsRemove(t *testing.T) {
	start := []domain.CartItem{
		item("a", "M", 1000, 2),
		item("b", "S", 300, 1),
	}

	updated := NewStore(start)
	updated.UpdateQuantity("a", "M", 0)

	removed := NewStore(start)
	removed.RemoveItem("a", "M")

	assert.Equal(t, removed.Items(), updated.Items())

	negative := NewStore(start)
	negative.UpdateQuantity("a", "M", -3)
	assert.Equal(t, removed.Items(), negative.Items())
}

func TestRemoveItem_NotPresent(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 1000, 2)})
	before := s.Items()

	s.RemoveItem("a", "XL")
	s.RemoveItem("z", "M")

	assert.Equal(t, before, s.Items())
}

func TestClear(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 1000, 2), item("b", "S", 10, 1)})
	s.Clear()

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestTotals(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())

	s.AddItem(item("a", "M", 1000, 2))
	assert.Equal(t, 2, s.TotalItems())
	assert.Equal(t, "2000", s.TotalPrice().String())

	s.AddItem(domain.CartItem{
		Product:  domain.ProductSnapshot{ID: "b", Price: decimal.RequireFromString("249.50")},
		Size:     "S",
		Quantity: 3,
	})
	assert.Equal(t, 5, s.TotalItems())
	assert.Equal(t, "2748.5", s.TotalPrice().String())
}

func TestTotalPrice_UsesSnapshotPrice(t *testing.T) {
	product := domain.Product{ID: "a", Name: "Tee", Price: decimal.NewFromInt(800), Sizes: []string{"M"}}
	s := NewStore(nil)
	s.AddItem(QuickAdd(product, "M", 1))

	product.Price = decimal.NewFromInt(1200)

	assert.Equal(t, "800", s.TotalPrice().String())
}

func TestObserversNotifiedOnMutation(t *testing.T) {
	var calls int
	var last []domain.CartItem
	s := NewStore(nil, func(items []domain.CartItem) {
		calls++
		last = items
	})

	s.AddItem(item("a", "M", 1000, 1))
	s.UpdateQuantity("a", "M", 3)
	s.SetOpen(true)
	s.RemoveItem("a", "M")
	s.Clear()

	assert.Equal(t, 4, calls)
	assert.Empty(t, last)
	assert.True(t, s.IsOpen())
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 1000, 1)})
	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestQuickAdd_DefaultsToFirstSize(t *testing.T) {
	product := domain.Product{ID: "a", Price: decimal.NewFromInt(100), Sizes: []string{"S", "M"}}

	line := QuickAdd(product, "", 0)
	assert.Equal(t, "S", line.Size)
	assert.Equal(t, 1, line.Quantity)

	line = QuickAdd(product, "M", 2)
	assert.Equal(t, "M", line.Size)

	line = QuickAdd(domain.Product{ID: "b"}, "", 1)
	assert.Equal(t, "", line.Size)
}

func TestAddItem_SaturatesAtMaxLineQuantity(t *testing.T) {
	s := NewStore(nil)

	s.AddItem(item("a", "M", 1000, math.MaxInt))
	s.AddItem(item("a", "M", 1000, 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, domain.MaxLineQuantity, items[0].Quantity)
	assert.Equal(t, domain.MaxLineQuantity, s.TotalItems())
	assert.Equal(t, "99000", s.TotalPrice().String())

	s.AddItem(item("a", "M", 1000, domain.MaxLineQuantity))
	assert.Equal(t, domain.MaxLineQuantity, s.Items()[0].Quantity)
}

func TestUpdateQuantity_Clamped(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 1000, 1)})

	s.UpdateQuantity("a", "M", math.MaxInt)
	assert.Equal(t, domain.MaxLineQuantity, s.Items()[0].Quantity)
}

func TestNewStore_ClampsRestoredQuantities(t *testing.T) {
	s := NewStore([]domain.CartItem{item("a", "M", 10, 5000), item("b", "M", 10, -1)})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, domain.MaxLineQuantity, items[0].Quantity)
}

func TestQuickAdd_ClampsQuantity(t *testing.T) {
	product := domain.Product{ID: "a", Sizes: []string{"M"}}

	assert.Equal(t, 1, QuickAdd(product, "", 0).Quantity)
	assert.Equal(t, domain.MaxLineQuantity, QuickAdd(product, "", 1000).Quantity)
}

func TestObservers_SeeMutationsInOrder(t *testing.T) {
	for run := 0; run < 20; run++ {
		var mu sync.Mutex
		var last []domain.CartItem
		s := NewStore(nil, func(items []domain.CartItem) {
			time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
			mu.Lock()
			last = items
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 5; i++ {
					s.AddItem(item("a", "M", 100, 1))
				}
			}()
		}
		wg.Wait()

		mu.Lock()
		require.Equal(t, s.Items(), last, "run %d", run)
		mu.Unlock()
	}
}
