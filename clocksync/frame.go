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

var (
	// KeyCommandPrefix precedes the session key when installing it.
	KeyCommandPrefix = []byte{0x11, 0x01}
	// AuthCommandPrefix precedes the session key when authenticating.
	AuthCommandPrefix = []byte{0x11, 0x02}
	// EmptyPrefix is used for the time write, only the payload is sent.
	EmptyPrefix = []byte{}
)

// Frame pairs a command opcode prefix with its payload. It is the unit
// written to a characteristic.
type Frame struct {
	Prefix  []byte
	Payload []byte
}

// Bytes returns prefix and payload concatenated into a new slice.
func (f Frame) Bytes() []byte {
	b := make([]byte, 0, len(f.Prefix)+len(f.Payload))
	b = append(b, f.Prefix...)
	return append(b, f.Payload...)
}
