// Package cart implements the per-user checkout cart. Items are subscription
// requests held in memory until checkout turns each one into a real
// subscription with its visit schedule.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/greenspire/plant-rental/internal/models"
)

var (
	// ErrEmptyCart marks a checkout on a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoSuchItem marks a removal with an index outside the cart.
	ErrNoSuchItem = errors.New("no such cart item")
)

// Subscriber creates one subscription per checked-out cart item.
type Subscriber interface {
	Create(ctx context.Context, userUID string, req *models.DummySubscription) (int, error)
}

// CartService keeps one in-memory cart per user uid.
type CartService struct {
	mu         sync.RWMutex
	carts      map[string][]models.DummySubscription
	subscriber Subscriber
	log        *slog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(subscriber Subscriber, log *slog.Logger) *CartService {
	return &CartService{
		carts:      make(map[string][]models.DummySubscription),
		subscriber: subscriber,
		log:        log,
	}
}

// Add appends an item to the user's cart and returns the new item count.
func (s *CartService) Add(userUID string, item models.DummySubscription) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userUID] = append(s.carts[userUID], item)
	return len(s.carts[userUID])
}

// Items returns a copy of the user's cart.
func (s *CartService) Items(userUID string) []models.DummySubscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.DummySubscription, len(s.carts[userUID]))
	copy(items, s.carts[userUID])
	return items
}

// Remove deletes the item at index from the user's cart.
func (s *CartService) Remove(userUID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userUID]
	if index < 0 || index >= len(items) {
		return fmt.Errorf("index %d: %w", index, ErrNoSuchItem)
	}
	s.carts[userUID] = append(items[:index], items[index+1:]...)
	return nil
}

// Checkout creates one subscription per cart item and empties the cart.
// Items are processed in order; on failure the already created subscriptions
// stay, the failed item and the rest remain in the cart.
func (s *CartService) Checkout(ctx context.Context, userUID string) ([]int, error) {
	s.mu.Lock()
	items := s.carts[userUID]
	s.mu.Unlock()

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]int, 0, len(items))
	for i := range items {
		id, err := s.subscriber.Create(ctx, userUID, &items[i])
		if err != nil {
			s.mu.Lock()
			s.carts[userUID] = items[i:]
			s.mu.Unlock()
			return ids, err
		}
		ids = append(ids, id)
	}

	s.mu.Lock()
	delete(s.carts, userUID)
	s.mu.Unlock()

	s.log.Info("cart checked out",
		slog.String("user_uid", userUID), slog.Int("subscriptions", len(ids)))
	return ids, nil
}
