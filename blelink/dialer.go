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

// Package blelink opens BLE sessions that satisfy clocksync.Device.
package blelink

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/mvo5/ble-clock/clocksync"
)

const (
	BackendHCI   = "hci"
	BackendBluez = "bluez"
)

// Link is a connected device. The caller that dialed it closes it.
type Link interface {
	clocksync.Device
	Close() error
}

// Dialer connects to a device and resolves the given characteristic UUIDs
// so that they can be used as write selectors on the returned Link.
type Dialer interface {
	Dial(ctx context.Context, address string, characteristics ...string) (Link, error)
}

// New returns a dialer for backend on the named adapter, e.g. "hci0".
func New(backend, adapter string) (Dialer, error) {
	switch backend {
	case BackendHCI, "":
		d, err := NewHCIDialer(adapter)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendBluez:
		d, err := NewBluezDialer(adapter)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, errors.Errorf("unknown backend %q", backend)
}

// adapterIndex turns "hci1" into 1.
func adapterIndex(adapter string) (int, error) {
	if adapter == "" {
		return 0, nil
	}
	if !strings.HasPrefix(adapter, "hci") {
		return 0, errors.Errorf("invalid adapter name %q", adapter)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(adapter, "hci"))
	if err != nil || n < 0 {
		return 0, errors.Errorf("invalid adapter name %q", adapter)
	}
	return n, nil
}

func missingCharacteristic(address, uuid string) error {
	return errors.Errorf("characteristic %v not found on %v", uuid, address)
}

func unknownSelector(selector string) error {
	return errors.Errorf("characteristic %v was not resolved when dialing", selector)
}

// Lazy defers opening the adapter until the first Dial, so that callers
// which never need a connection never touch the controller. A failed open
// is retried on the next Dial.
func Lazy(backend, adapter string) *LazyDialer {
	return &LazyDialer{backend: backend, adapter: adapter, open: New}
}

type LazyDialer struct {
	backend, adapter string
	open             func(backend, adapter string) (Dialer, error)

	mu sync.Mutex
	d  Dialer
}

func (l *LazyDialer) dialer() (Dialer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.d == nil {
		d, err := l.open(l.backend, l.adapter)
		if err != nil {
			return nil, err
		}
		l.d = d
	}
	return l.d, nil
}

func (l *LazyDialer) Dial(ctx context.Context, address string, characteristics ...string) (Link, error) {
	d, err := l.dialer()
	if err != nil {
		return nil, err
	}
	return d.Dial(ctx, address, characteristics...)
}

// Close releases the adapter if it was opened.
func (l *LazyDialer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.d == nil {
		return nil
	}
	d := l.d
	l.d = nil
	if c, ok := d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
