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

// Package types holds the small set of fixed-size value types (addresses,
// hashes) shared by the storage view and the batch executor's data model.
package types

import "encoding/hex"

const (
	AddressLength = 20
	HashLength    = 32
)

// Address is a 20-byte account or contract address.
type Address [AddressLength]byte

// BytesToAddress truncates or left-pads b to AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Address{} }

// Hash is a 32-byte keccak-style digest, used both for transaction hashes
// and for storage slot keys.
type Hash [HashLength]byte

// BytesToHash truncates or left-pads b to HashLength.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Hash{} }

// StorageKey identifies a single slot in a contract's storage: the owning
// address plus the slot index.
type StorageKey struct {
	Address Address
	Slot    Hash
}

func (k StorageKey) String() string {
	return k.Address.Hex() + "/" + k.Slot.Hex()
}
