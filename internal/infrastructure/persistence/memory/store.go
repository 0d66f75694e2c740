// Package memory is a process-local PaymentStore. It behaves like the
// PostgreSQL store where callers can observe a difference: writes are staged
// until commit, inserters of an already reserved idempotency key block until
// the owning transaction ends, and locked rows block other writers.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

var ErrTxClosed = errors.New("transaction already closed")

type claim struct {
	owner    *Tx
	released chan struct{}
}

type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Payment
	byKey  map[string]int64

	reserved map[string]*claim
	locks    map[int64]*claim
}

func NewStore() *Store {
	return &Store{
		rows:     make(map[int64]domain.Payment),
		byKey:    make(map[string]int64),
		reserved: make(map[string]*claim),
		locks:    make(map[int64]*claim),
	}
}

// WithinTransaction executes fn against a staged view of the store.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store application.PaymentStore) error) error {
	tx := s.begin()
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Ping fails only when ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) begin() *Tx {
	return &Tx{
		s:      s,
		staged: make(map[int64]domain.Payment),
	}
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &p, nil
}

// FindByIDForUpdate outside a transaction locks nothing beyond the read.
func (s *Store) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.FindByID(ctx, id)
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return latestForOrder(s.rows, nil, orderID)
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p := s.rows[id]
	return &p, nil
}

func (s *Store) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return stalePending(s.rows, nil, olderThan, limit), nil
}

// Save outside a transaction commits immediately.
func (s *Store) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	var saved *domain.Payment
	err := s.WithinTransaction(ctx, func(ctx context.Context, store application.PaymentStore) error {
		var err error
		saved, err = store.Save(ctx, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Len returns the number of committed payments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// acquire takes the claim in claims[k] for tx, waiting while another
// transaction holds it. check runs under the store mutex once the claim is
// free and may refuse it.
func acquire[K comparable](ctx context.Context, s *Store, claims map[K]*claim, k K, tx *Tx, check func() error) (bool, error) {
	for {
		s.mu.Lock()
		c, held := claims[k]
		if held && c.owner != tx {
			released := c.released
			s.mu.Unlock()

			select {
			case <-released:
				continue
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}

		if check != nil {
			if err := check(); err != nil {
				s.mu.Unlock()
				return false, err
			}
		}

		acquired := !held
		if acquired {
			claims[k] = &claim{owner: tx, released: make(chan struct{})}
		}
		s.mu.Unlock()
		return acquired, nil
	}
}

func latestForOrder(rows, overlay map[int64]domain.Payment, orderID string) (*domain.Payment, error) {
	var latest *domain.Payment
	for _, p := range merged(rows, overlay) {
		if p.OrderID != orderID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) ||
			(p.CreatedAt.Equal(latest.CreatedAt) && p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return latest, nil
}

func stalePending(rows, overlay map[int64]domain.Payment, olderThan time.Time, limit int) []*domain.Payment {
	var out []*domain.Payment
	for _, p := range merged(rows, overlay) {
		if p.Status == domain.StatusPending && p.CreatedAt.Before(olderThan) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func merged(rows, overlay map[int64]domain.Payment) []*domain.Payment {
	out := make([]*domain.Payment, 0, len(rows)+len(overlay))
	for id, p := range rows {
		if staged, ok := overlay[id]; ok {
			p = staged
		}
		out = append(out, &p)
	}
	for id, p := range overlay {
		if _, ok := rows[id]; !ok {
			out = append(out, &p)
		}
	}
	return out
}
