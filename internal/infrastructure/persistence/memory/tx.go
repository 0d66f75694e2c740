package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

// Tx is a PaymentStore bound to one transaction. Its writes are visible
// only to itself until Commit.
type Tx struct {
	s      *Store
	staged map[int64]domain.Payment
	keys   []string
	locked []int64
	closed bool
}

func (tx *Tx) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if p, ok := tx.staged[id]; ok {
		return &p, nil
	}
	return tx.s.FindByID(ctx, id)
}

// FindByIDForUpdate waits for any other transaction holding the row and
// keeps it locked until this one ends. A row that does not exist is not
// locked.
func (tx *Tx) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if err := tx.lockRow(ctx, id); err != nil {
		return nil, err
	}
	return tx.FindByID(ctx, id)
}

func (tx *Tx) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	return latestForOrder(tx.s.rows, tx.staged, orderID)
}

func (tx *Tx) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	for _, p := range tx.staged {
		if p.IdempotencyKey == key {
			return &p, nil
		}
	}
	return tx.s.FindByIdempotencyKey(ctx, key)
}

func (tx *Tx) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	return stalePending(tx.s.rows, tx.staged, olderThan, limit), nil
}

func (tx *Tx) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if payment.ID == 0 {
		return tx.insert(ctx, *payment)
	}
	return tx.update(ctx, *payment)
}

func (tx *Tx) insert(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	s := tx.s
	acquired, err := acquire(ctx, s, s.reserved, p.IdempotencyKey, tx, func() error {
		if _, taken := s.byKey[p.IdempotencyKey]; taken {
			return domain.ErrDuplicateIdempotencyKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	if !acquired {
		// this transaction already staged a payment under the key
		return nil, fmt.Errorf("insert payment: %w", domain.ErrDuplicateIdempotencyKey)
	}
	tx.keys = append(tx.keys, p.IdempotencyKey)

	s.mu.Lock()
	s.nextID++
	p.ID = s.nextID
	s.mu.Unlock()

	locked, err := acquire(ctx, s, s.locks, p.ID, tx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	if locked {
		tx.locked = append(tx.locked, p.ID)
	}

	tx.staged[p.ID] = p
	return &p, nil
}

func (tx *Tx) update(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	if err := tx.lockRow(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	tx.staged[p.ID] = p
	return &p, nil
}

// lockRow claims an existing row. Missing rows fail with
// domain.ErrPaymentNotFound and leave no claim behind.
func (tx *Tx) lockRow(ctx context.Context, id int64) error {
	acquired, err := acquire(ctx, tx.s, tx.s.locks, id, tx, func() error {
		if _, ok := tx.staged[id]; ok {
			return nil
		}
		if _, ok := tx.s.rows[id]; !ok {
			return domain.ErrPaymentNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	if acquired {
		tx.locked = append(tx.locked, id)
	}
	return nil
}

// Commit publishes staged rows and releases every claim.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	s := tx.s
	s.mu.Lock()
	for id, p := range tx.staged {
		s.rows[id] = p
		s.byKey[p.IdempotencyKey] = id
	}
	s.mu.Unlock()

	tx.release()
	return nil
}

// Rollback discards staged rows. It is a no-op once the transaction ended.
func (tx *Tx) Rollback() {
	if tx.closed {
		return
	}
	tx.release()
}

func (tx *Tx) release() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range tx.keys {
		if c, ok := s.reserved[key]; ok && c.owner == tx {
			close(c.released)
			delete(s.reserved, key)
		}
	}
	for _, id := range tx.locked {
		if c, ok := s.locks[id]; ok && c.owner == tx {
			close(c.released)
			delete(s.locks, id)
		}
	}
	tx.staged = nil
	tx.keys = nil
	tx.locked = nil
	tx.closed = true
}
