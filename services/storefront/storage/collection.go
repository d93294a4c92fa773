// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a document or index entry does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a unique index value is already taken or
	// a concurrent transaction touched the same keys.
	ErrConflict = errors.New("conflict")

	// ErrCorrupt is returned when a stored document cannot be decoded.
	ErrCorrupt = errors.New("corrupt document")
)

// Unique names a unique index entry: Name is the index ("number", "email"),
// Value the indexed value.
type Unique struct {
	Name  string
	Value string
}

// NewID returns a new random document id.
func NewID() string {
	return uuid.NewString()
}

// Collection stores documents of type T as JSON under one key prefix.
//
// # Thread Safety
//
// Safe for concurrent use; every method runs in its own transaction.
type Collection[T any] struct {
	db   *DB
	name string
}

// NewCollection binds a named collection to db. name must not contain "/".
func NewCollection[T any](db *DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) docPrefix() []byte {
	return []byte(c.name + "/doc/")
}

func (c *Collection[T]) docKey(id string) []byte {
	return []byte(c.name + "/doc/" + id)
}

func (c *Collection[T]) indexKey(u Unique) []byte {
	return []byte(c.name + "/idx/" + u.Name + "/" + u.Value)
}

// Insert stores a new document under id and claims every unique entry.
//
// # Outputs
//
//   - ErrConflict if id exists or any unique value is already claimed
//   - nil on success
func (c *Collection[T]) Insert(ctx context.Context, id string, doc *T, uniques ...Unique) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	return c.db.Update(ctx, func(txn *badger.Txn) error {
		if exists, err := keyExists(txn, c.docKey(id)); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%w: %s %s already exists", ErrConflict, c.name, id)
		}
		for _, u := range uniques {
			key := c.indexKey(u)
			exists, err := keyExists(txn, key)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s %s %q already taken", ErrConflict, c.name, u.Name, u.Value)
			}
			if err := txn.Set(key, []byte(id)); err != nil {
				return err
			}
		}
		return txn.Set(c.docKey(id), data)
	})
}

// Put creates or replaces the document under id. A positive ttl makes the
// document expire; zero keeps it forever.
func (c *Collection[T]) Put(ctx context.Context, id string, doc *T, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	return c.db.Update(ctx, func(txn *badger.Txn) error {
		entry := badger.NewEntry(c.docKey(id), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get loads the document stored under id.
//
// # Outputs
//
//   - ErrNotFound if there is no such document (or it expired)
//   - ErrCorrupt if the stored bytes are not valid JSON for T
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var doc *T
	err := c.db.View(ctx, func(txn *badger.Txn) error {
		var err error
		doc, err = c.load(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Lookup resolves a unique index entry and loads the document it points to.
func (c *Collection[T]) Lookup(ctx context.Context, u Unique) (*T, error) {
	var doc *T
	err := c.db.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(c.indexKey(u))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s %s %q", ErrNotFound, c.name, u.Name, u.Value)
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc, err = c.load(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update loads the document under id, applies fn and writes it back in one
// transaction. If fn returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(doc *T) error) (*T, error) {
	var doc *T
	err := c.db.Update(ctx, func(txn *badger.Txn) error {
		var err error
		doc, err = c.load(txn, id)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s document: %w", c.name, err)
		}
		return txn.Set(c.docKey(id), data)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Upsert loads the document under id, applies fn and writes the result with
// ttl, all in one transaction. fn receives a zero T and found=false when the
// document is missing or cannot be decoded. If fn returns an error nothing
// is written.
func (c *Collection[T]) Upsert(ctx context.Context, id string, ttl time.Duration, fn func(doc *T, found bool) error) (*T, error) {
	var doc *T
	err := c.db.Update(ctx, func(txn *badger.Txn) error {
		found := true
		loaded, err := c.load(txn, id)
		switch {
		case err == nil:
			doc = loaded
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
			if errors.Is(err, ErrCorrupt) && c.db.cfg.Logger != nil {
				c.db.cfg.Logger.Warn("replacing undecodable document", "collection", c.name, "id", id)
			}
			doc = new(T)
			found = false
		default:
			return err
		}

		if err := fn(doc, found); err != nil {
			return err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s document: %w", c.name, err)
		}
		entry := badger.NewEntry(c.docKey(id), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document under id together with the given unique
// entries. It returns ErrNotFound if the document does not exist.
func (c *Collection[T]) Delete(ctx context.Context, id string, uniques ...Unique) error {
	return c.db.Update(ctx, func(txn *badger.Txn) error {
		exists, err := keyExists(txn, c.docKey(id))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s %s", ErrNotFound, c.name, id)
		}
		for _, u := range uniques {
			if err := txn.Delete(c.indexKey(u)); err != nil {
				return err
			}
		}
		return txn.Delete(c.docKey(id))
	})
}

// Scan calls fn for every document in key order. Documents that fail to
// decode are skipped. Returning an error from fn stops the scan and that
// error is returned.
func (c *Collection[T]) Scan(ctx context.Context, fn func(id string, doc *T) error) error {
	prefix := c.docPrefix()
	return c.db.View(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), string(prefix))

			var doc T
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				if c.db.cfg.Logger != nil {
					c.db.cfg.Logger.Warn("skipping undecodable document",
						"collection", c.name, "id", id, "error", err)
				}
				continue
			}
			if err := fn(id, &doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertMany stores docs in a single transaction. ids and docs must have the
// same length.
func (c *Collection[T]) InsertMany(ctx context.Context, ids []string, docs []*T) error {
	if len(ids) != len(docs) {
		return fmt.Errorf("insert %s: %d ids for %d documents", c.name, len(ids), len(docs))
	}
	encoded := make([][]byte, len(docs))
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s document: %w", c.name, err)
		}
		encoded[i] = data
	}

	return c.db.Update(ctx, func(txn *badger.Txn) error {
		for i, id := range ids {
			if err := txn.Set(c.docKey(id), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Collection[T]) load(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(c.docKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c.name, id, err)
	}

	var doc T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrCorrupt, c.name, id, err)
	}
	return &doc, nil
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
