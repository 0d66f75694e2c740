package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/persistence/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(t *testing.T, key, orderID string, createdAt time.Time) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment("PAY-"+key, orderID, key, 1, decimal.RequireFromString("25.00"), createdAt)
	require.NoError(t, err)
	return p
}

func TestStore_SaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	first, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
	require.NoError(t, err)
	second, err := store.Save(ctx, newPayment(t, "K2", "ORD-1", time.Now()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	found, err := store.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "K1", found.IdempotencyKey)
}

func TestStore_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
	require.NoError(t, err)

	_, err = store.Save(ctx, newPayment(t, "K1", "ORD-2", time.Now()))

	assert.ErrorIs(t, err, domain.ErrDuplicateIdempotencyKey)
	assert.Equal(t, 1, store.Len())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.FindByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = store.FindByOrderID(ctx, "ORD-404")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = store.FindByIdempotencyKey(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestStore_FindByOrderIDReturnsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	_, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", now.Add(-time.Hour)))
	require.NoError(t, err)
	latest, err := store.Save(ctx, newPayment(t, "K2", "ORD-1", now))
	require.NoError(t, err)

	found, err := store.FindByOrderID(ctx, "ORD-1")

	require.NoError(t, err)
	assert.Equal(t, latest.ID, found.ID)
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
		saved, err := tx.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
		require.NoError(t, err)

		visible, err := tx.FindByIdempotencyKey(ctx, "K1")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, visible.ID)

		_, err = store.FindByIdempotencyKey(ctx, "K1")
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound, "uncommitted rows are invisible outside the transaction")
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len())

	_, err = store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
	assert.NoError(t, err, "a rolled back key can be reused")
}

func TestStore_ConcurrentInsertWaitsForOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	inserted := make(chan struct{})
	proceed := make(chan struct{})
	ownerDone := make(chan error, 1)

	go func() {
		ownerDone <- store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
			if _, err := tx.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now())); err != nil {
				return err
			}
			close(inserted)
			<-proceed
			return nil
		})
	}()

	<-inserted
	contender := make(chan error, 1)
	go func() {
		_, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
		contender <- err
	}()

	select {
	case err := <-contender:
		t.Fatalf("contender finished before the owner committed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	require.NoError(t, <-ownerDone)
	assert.ErrorIs(t, <-contender, domain.ErrDuplicateIdempotencyKey)
	assert.Equal(t, 1, store.Len())
}

func TestStore_WaitingInserterHonoursContext(t *testing.T) {
	store := memory.NewStore()
	release := make(chan struct{})
	inserted := make(chan struct{})

	go func() {
		_ = store.WithinTransaction(context.Background(), func(ctx context.Context, tx application.PaymentStore) error {
			_, err := tx.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
			close(inserted)
			<-release
			return err
		})
	}()
	<-inserted
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_RowLockSerialisesWriters(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	saved, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
	require.NoError(t, err)

	locked := make(chan struct{})
	proceed := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
			p, err := tx.FindByIDForUpdate(ctx, saved.ID)
			if err != nil {
				return err
			}
			close(locked)
			<-proceed
			next, err := domain.Transition(*p, domain.GatewayApproved("TXN-1", time.Now()))
			if err != nil {
				return err
			}
			_, err = tx.Save(ctx, &next)
			return err
		})
	}()
	<-locked

	second := make(chan domain.PaymentStatus, 1)
	go func() {
		_ = store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
			p, err := tx.FindByIDForUpdate(ctx, saved.ID)
			if err != nil {
				return err
			}
			second <- p.Status
			return nil
		})
	}()

	close(proceed)
	require.NoError(t, <-firstDone)
	assert.Equal(t, domain.StatusSuccess, <-second, "the second reader sees the first writer's commit")
}

func TestStore_LockingMissingRowLeavesNoClaim(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	store := memory.NewStore()

	looked := make(chan error, 1)
	release := make(chan struct{})
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
			_, err := tx.FindByIDForUpdate(ctx, 1)
			looked <- err
			<-release
			return errors.New("rollback")
		})
	}()
	require.ErrorIs(t, <-looked, domain.ErrPaymentNotFound)

	err := store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
		_, err := tx.FindByIDForUpdate(ctx, 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound, "a second locker does not wait on a missing row")

	inserted, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", time.Now()))
	require.NoError(t, err)
	require.Equal(t, int64(1), inserted.ID)

	close(release)
	<-firstDone

	err = store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
		p, err := tx.FindByIDForUpdate(ctx, inserted.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "K1", p.IdempotencyKey)
		return nil
	})
	require.NoError(t, err, "the inserted row stays lockable after the first transaction rolls back")
}

func TestStore_FindStalePending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	old, err := store.Save(ctx, newPayment(t, "K1", "ORD-1", now.Add(-2*time.Hour)))
	require.NoError(t, err)
	_, err = store.Save(ctx, newPayment(t, "K2", "ORD-2", now))
	require.NoError(t, err)

	settled := newPayment(t, "K3", "ORD-3", now.Add(-3*time.Hour))
	settled, err = store.Save(ctx, settled)
	require.NoError(t, err)
	next, err := domain.Transition(*settled, domain.GatewayApproved("TXN-1", now))
	require.NoError(t, err)
	_, err = store.Save(ctx, &next)
	require.NoError(t, err)

	stale, err := store.FindStalePending(ctx, now.Add(-time.Hour), 10)

	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}

func TestTx_ClosedAfterCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var leaked application.PaymentStore
	err := store.WithinTransaction(ctx, func(ctx context.Context, tx application.PaymentStore) error {
		leaked = tx
		return nil
	})
	require.NoError(t, err)

	_, err = leaked.FindByID(ctx, 1)
	assert.ErrorIs(t, err, memory.ErrTxClosed)
}
