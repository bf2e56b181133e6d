package cart

import (
	"sync"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Observer receives a copy of the items after every mutation.
type Observer func(items []domain.CartItem)

// Store holds one customer's in-progress selection. All mutation goes
// through its methods. Observers see snapshots in mutation order, outside the
// state lock, so they may read the store but must not mutate it.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	items     []domain.CartItem
	open      bool
	observers []Observer
}

func NewStore(items []domain.CartItem, observers ...Observer) *Store {
	s := &Store{observers: observers}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		item.Quantity = domain.ClampQuantity(item.Quantity)
		s.items = append(s.items, item)
	}
	return s
}

func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// AddItem merges into an existing line for the same product and size. Line
// quantities saturate at domain.MaxLineQuantity.
func (s *Store) AddItem(item domain.CartItem) {
	item.Quantity = domain.ClampQuantity(item.Quantity)

	s.mutate(func() {
		for i := range s.items {
			if s.items[i].Matches(item.Product.ID, item.Size) {
				s.items[i].Quantity = domain.ClampQuantity(s.items[i].Quantity + item.Quantity)
				return
			}
		}
		s.items = append(s.items, item)
	})
}

func (s *Store) UpdateQuantity(productID, size string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID, size)
		return
	}

	s.mutate(func() {
		for i := range s.items {
			if s.items[i].Matches(productID, size) {
				s.items[i].Quantity = domain.ClampQuantity(quantity)
				return
			}
		}
	})
}

func (s *Store) RemoveItem(productID, size string) {
	s.mutate(func() {
		kept := s.items[:0]
		for _, item := range s.items {
			if !item.Matches(productID, size) {
				kept = append(kept, item)
			}
		}
		s.items = kept
	})
}

func (s *Store) Clear() {
	s.mutate(func() {
		s.items = nil
	})
}

func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	items := s.copyItems()
	observers := append([]Observer(nil), s.observers...)
	// Taking notifyMu before releasing mu hands mutations to the observers in
	// the order they were applied.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, o := range observers {
		o(items)
	}
}

func (s *Store) copyItems() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// QuickAdd builds a line for product, falling back to the first available
// size when none was picked.
func QuickAdd(product domain.Product, size string, quantity int) domain.CartItem {
	if size == "" && len(product.Sizes) > 0 {
		size = product.Sizes[0]
	}
	return domain.CartItem{
		Product:  product.Snapshot(),
		Size:     size,
		Quantity: domain.ClampQuantity(quantity),
	}
}
