// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

// Package state implements the Storage View: a read-through, copy-on-read
// overlay over a read-only persistent key-value snapshot, shared between the
// batch executor's Driver and the VM it drives.
package state

import (
	"context"

	"github.com/ledgerwatch/erigon-lib/kv"
	"github.com/ledgerwatch/erigon-lib/kv/mdbx"
	erigonlog "github.com/ledgerwatch/log/v3"

	n42errors "github.com/n42blockchain/batchexecutor/pkg/errors"
)

// StorageTable is the single table the batch executor reads contract
// storage slots from in the local snapshot.
const StorageTable = "BatchExecutorStorage"

// snapshotDBLabel distinguishes the executor's own local mdbx store from a
// node's chain/txpool databases when both run in the same process.
const snapshotDBLabel kv.Label = 254

var snapshotTableCfg = kv.TableCfg{
	StorageTable: kv.TableCfgItem{},
}

// Snapshot is a read-only handle onto the local persistent key-value
// snapshot a batch's Storage View is seeded from. It is opened once, before
// the VM Driver starts, and never written to during the batch.
type Snapshot struct {
	db kv.RwDB
	tx kv.Tx
}

// OpenSnapshot opens (creating if necessary) the local mdbx store at
// dbPath, refreshes its StorageTable from pool, and returns a read-only
// transaction against the refreshed store. This is the one point during
// construction where the executor talks to the upstream database;
// afterward the batch is served entirely from the returned Snapshot.
func OpenSnapshot(ctx context.Context, dbPath string, pool kv.RoDB) (*Snapshot, error) {
	db, err := mdbx.NewMDBX(erigonlog.New()).
		Label(snapshotDBLabel).
		Path(dbPath).
		WithTableCfg(func(kv.TableCfg) kv.TableCfg { return snapshotTableCfg }).
		Open()
	if err != nil {
		return nil, n42errors.Errorf("%w: open local storage snapshot at %s: %v", n42errors.ErrSnapshotRefresh, dbPath, err)
	}

	if err := refreshFromPool(ctx, db, pool); err != nil {
		db.Close()
		return nil, n42errors.Errorf("%w: %v", n42errors.ErrSnapshotRefresh, err)
	}

	tx, err := db.BeginRo(ctx)
	if err != nil {
		db.Close()
		return nil, n42errors.Errorf("%w: open read-only transaction on local snapshot: %v", n42errors.ErrSnapshotRefresh, err)
	}

	return &Snapshot{db: db, tx: tx}, nil
}

// refreshFromPool copies every entry of pool's StorageTable into db's
// StorageTable, replacing the values of keys present in both; keys that
// exist only in db are not removed. pool is not touched again once this
// returns; the batch runs entirely against the local copy from here on.
func refreshFromPool(ctx context.Context, db kv.RwDB, pool kv.RoDB) error {
	return db.Update(ctx, func(tx kv.RwTx) error {
		return pool.View(ctx, func(poolTx kv.Tx) error {
			c, err := poolTx.Cursor(StorageTable)
			if err != nil {
				return err
			}
			defer c.Close()

			k, v, err := c.First()
			for k != nil {
				if err != nil {
					return err
				}
				if err := tx.Put(StorageTable, k, v); err != nil {
					return err
				}
				k, v, err = c.Next()
			}
			return err
		})
	})
}

// Get returns the raw value stored at key, or nil if absent.
func (s *Snapshot) Get(key []byte) ([]byte, error) {
	return s.tx.GetOne(StorageTable, key)
}

// Close releases the read-only transaction and the local mdbx store.
func (s *Snapshot) Close() {
	s.tx.Rollback()
	s.db.Close()
}
