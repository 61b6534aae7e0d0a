package basket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/basket-engine/internal/catalog"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
)

const clearedMessage = "Basket cleared!"

// ErrPersistence marks failures of the durability boundary.
var ErrPersistence = errors.New("basket persistence failed")

// ProductSource resolves product codes.
type ProductSource interface {
	FindByCode(code string) (catalog.Product, error)
}

// Pricer derives the snapshot price and unit of a new line item.
type Pricer interface {
	EffectivePriceAndUnit(p catalog.Product) (decimal.Decimal, string)
}

// Recorder receives basket activity counters.
type Recorder interface {
	ItemAdded(productCode string)
	Cleared()
	PersistFailed(op string)
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches structured logging.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) { s.logg = logg }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *Store) { s.metrics = rec }
}

// Store is one basket. Mutations are applied to the slot's current contents
// through Repository.Update, so Stores opened on the same slot never lose each
// other's writes. The local view only changes after the write succeeded.
type Store struct {
	mu      sync.Mutex
	catalog ProductSource
	pricer  Pricer
	repo    Repository
	items   []LineItem
	logg    *logger.Logger
	metrics Recorder
}

// Snapshot is a consistent view of the basket.
type Snapshot struct {
	Items     []LineItem
	Total     decimal.Decimal
	LineCount int
	UnitCount int
	IsEmpty   bool
}

// Open restores the basket persisted in repo.
func Open(ctx context.Context, products ProductSource, pricer Pricer, repo Repository, opts ...Option) (*Store, error) {
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricer required")
	}
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	s := &Store{catalog: products, pricer: pricer, repo: repo}
	for _, opt := range opts {
		opt(s)
	}

	items, err := repo.Load(ctx)
	if err != nil {
		s.recordFailure(ctx, "load", err)
		return nil, persistenceError("load basket", err)
	}
	s.items = items
	return s, nil
}

// Add puts one unit of the product in the basket. The first add snapshots the
// effective price and unit; later adds only bump the quantity.
func (s *Store) Add(ctx context.Context, code string) (string, error) {
	if s.logg != nil {
		ctx = s.logg.WithProductCode(ctx, code)
	}
	product, err := s.catalog.FindByCode(code)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.repo.Update(ctx, func(current []LineItem) ([]LineItem, error) {
		return addLine(current, product, s.pricer), nil
	})
	if err != nil {
		s.recordFailure(ctx, "add", err)
		return "", persistenceError("save basket", err)
	}
	s.items = next

	if s.logg != nil {
		s.logg.Info(ctx, "basket.item_added")
	}
	if s.metrics != nil {
		s.metrics.ItemAdded(product.Code)
	}
	return fmt.Sprintf("%s added to basket!", product.Description), nil
}

// Clear empties the basket, persisting an empty list even when already empty.
func (s *Store) Clear(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.repo.Update(ctx, func([]LineItem) ([]LineItem, error) {
		return []LineItem{}, nil
	})
	if err != nil {
		s.recordFailure(ctx, "clear", err)
		return "", persistenceError("clear basket", err)
	}
	s.items = next

	if s.logg != nil {
		s.logg.Info(ctx, "basket.cleared")
	}
	if s.metrics != nil {
		s.metrics.Cleared()
	}
	return clearedMessage, nil
}

// Total is the exact sum of price * qty over all line items.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

// Items returns the line items in first-add order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// LineCount is the number of distinct products in the basket.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// UnitCount sums quantities across line items.
func (s *Store) UnitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return unitCount(s.items)
}

// Snapshot returns items, total and counts read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:     cloneItems(s.items),
		Total:     total(s.items),
		LineCount: len(s.items),
		UnitCount: unitCount(s.items),
		IsEmpty:   len(s.items) == 0,
	}
}

func (s *Store) recordFailure(ctx context.Context, op string, err error) {
	if s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "op", op), "basket.persist_failed", err)
	}
	if s.metrics != nil {
		s.metrics.PersistFailed(op)
	}
}

func persistenceError(msg string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%w: %w", ErrPersistence, err), msg)
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// addLine bumps the quantity of an existing line or snapshots a new one.
func addLine(current []LineItem, product catalog.Product, pricer Pricer) []LineItem {
	next := cloneItems(current)
	if idx := indexOf(next, product.Code); idx >= 0 {
		next[idx].Qty++
		return next
	}
	price, unit := pricer.EffectivePriceAndUnit(product)
	return append(next, LineItem{
		ProductCode: product.Code,
		Description: product.Description,
		Price:       price,
		Unit:        unit,
		Qty:         1,
	})
}

func indexOf(items []LineItem, code string) int {
	for i, item := range items {
		if item.ProductCode == code {
			return i
		}
	}
	return -1
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

func unitCount(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Qty
	}
	return n
}
