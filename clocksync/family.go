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
	"context"
	"strings"
)

const (
	// TagDirectWrite selects the family whose clock is set by a single
	// delegated helper call (Xiaomi LYWSD02 style).
	TagDirectWrite = "lywsd02"
	// TagKeyedWrite selects the family that needs a key exchange before
	// the time write (Qingping CGD1 style).
	TagKeyedWrite = "CGD1"

	// QingpingCharacteristic is the characteristic the keyed family
	// writes key, authentication and time frames to.
	QingpingCharacteristic = "00000001-0000-1000-8000-00805f9b34fb"
)

// Family is a device synchronization protocol. The set of families is
// closed, adding one means adding a type in this package that implements
// synchronize.
type Family interface {
	// Tag is the target name callers select the family with.
	Tag() string
	// Characteristic is the GATT characteristic the family writes to, or
	// "" when the family does not use a connection of its own.
	Characteristic() string

	synchronize(ctx context.Context, s *Synchronizer, dev Device, req Request) error
}

// DirectWrite delegates to the device's own helper, no key material is
// generated or transmitted.
type DirectWrite struct{}

func (DirectWrite) Tag() string            { return TagDirectWrite }
func (DirectWrite) Characteristic() string { return "" }

// KeyedWrite installs and authenticates a session key before writing the
// time payload, all to the same characteristic.
type KeyedWrite struct {
	// Char overrides QingpingCharacteristic when set.
	Char string
}

func (KeyedWrite) Tag() string { return TagKeyedWrite }

func (k KeyedWrite) Characteristic() string {
	if k.Char != "" {
		return k.Char
	}
	return QingpingCharacteristic
}

// Families lists every supported family.
func Families() []Family {
	return []Family{DirectWrite{}, KeyedWrite{}}
}

// Lookup returns the family for tag, compared case-insensitively.
func Lookup(tag string) (Family, error) {
	want := strings.TrimSpace(tag)
	for _, f := range Families() {
		if strings.EqualFold(f.Tag(), want) {
			return f, nil
		}
	}
	return nil, &UnsupportedTargetError{Target: tag}
}
