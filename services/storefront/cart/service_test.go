// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

var errNoProduct = errors.New("product not found")

type fakeProducts map[string]*datatypes.Product

func (f fakeProducts) Get(_ context.Context, id string) (*datatypes.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, errNoProduct
	}
	cp := *p
	return &cp, nil
}

func newTestService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	soldOut := earlGrey()
	soldOut.ID = "sold-out"
	soldOut.Stock = 0

	products := fakeProducts{
		"earl-grey": earlGrey(),
		"cookies":   cookies(),
		"sold-out":  soldOut,
	}
	return NewService(NewStore(db, time.Hour, nil), products), db
}

func TestService_AddAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "cart-1", "earl-grey", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalItems)

	loaded, err := svc.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	other, err := svc.Get(ctx, "cart-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty(), "carts are isolated by id")
}

func TestService_AddErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cart-1", "missing", 1)
	assert.ErrorIs(t, err, errNoProduct)

	_, err = svc.AddItem(ctx, "cart-1", "sold-out", 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestService_UpdateRemoveClear(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c", "earl-grey", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "c", "cookies", 1)
	require.NoError(t, err)

	c, err := svc.UpdateItem(ctx, "c", "cookies", 50)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity("cookies"))

	_, err = svc.UpdateItem(ctx, "c", "unknown", 1)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	qty, err := svc.ItemQuantity(ctx, "c", "cookies")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	c, err = svc.RemoveItem(ctx, "c", "cookies")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Quantity("cookies"))

	c, err = svc.Clear(ctx, "c")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStore_CorruptCartReadsEmpty(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte("carts/doc/broken"), []byte("{\"items\": ["))
	}))

	c, err := svc.Get(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = svc.AddItem(ctx, "broken", "earl-grey", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalItems, "a corrupt cart is replaced on the next write")
}

func TestStore_EmptyIDIsEmptyCart(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestService_ConcurrentAddsAreNotLost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddItem(ctx, "busy", "earl-grey", 1)
		}()
	}
	wg.Wait()

	c, err := svc.Get(ctx, "busy")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c.Quantity("earl-grey"), 1)
	assert.LessOrEqual(t, c.Quantity("earl-grey"), 5)
	assert.Equal(t, c.Quantity("earl-grey"), c.TotalItems)
}
