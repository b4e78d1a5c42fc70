// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2021 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package clocksync

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// SessionKeySize is the size of a keyed-family session key in bytes.
const SessionKeySize = 16

// SessionKey is the ephemeral 128-bit credential installed and
// authenticated before a keyed-family time write.
type SessionKey [SessionKeySize]byte

// GenerateKey reads a fresh session key from r. A nil r means
// crypto/rand.Reader.
func GenerateKey(r io.Reader) (SessionKey, error) {
	if r == nil {
		r = rand.Reader
	}
	var k SessionKey
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return SessionKey{}, &KeyError{Err: err}
	}
	return k, nil
}

func (k SessionKey) String() string {
	return hex.EncodeToString(k[:])
}
