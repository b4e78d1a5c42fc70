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

package blelink

import (
	"context"
	"strings"

	"github.com/go-ble/ble"
	ble_linux "github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/evt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// HCIDialer talks to the controller directly over a raw HCI socket.
type HCIDialer struct {
	dev *ble_linux.Device
}

func NewHCIDialer(adapter string) (*HCIDialer, error) {
	id, err := adapterIndex(adapter)
	if err != nil {
		return nil, err
	}
	dev, err := ble_linux.NewDeviceWithName("ble-clock",
		ble.OptDeviceID(id),
		ble.OptConnectHandler(func(e evt.LEConnectionComplete) {
			log.Debugf("connected, peer: %x handle: %v", e.PeerAddress(), e.ConnectionHandle())
		}),
		ble.OptDisconnectHandler(func(e evt.DisconnectionComplete) {
			log.Debugf("disconnected, handle: %v", e.ConnectionHandle())
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %v", adapter)
	}
	return &HCIDialer{dev: dev}, nil
}

func (d *HCIDialer) Dial(ctx context.Context, address string, characteristics ...string) (Link, error) {
	log.Debugf("dialing %v", address)
	cln, err := d.dev.Dial(ctx, ble.NewAddr(strings.ToLower(address)))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %v", address)
	}
	prof, err := cln.DiscoverProfile(true)
	if err != nil {
		cln.CancelConnection()
		return nil, errors.Wrapf(err, "cannot discover profile of %v", address)
	}

	l := &hciLink{
		client: cln,
		chars:  make(map[string]*ble.Characteristic, len(characteristics)),
	}
	for _, u := range characteristics {
		uuid, err := ble.Parse(u)
		if err != nil {
			cln.CancelConnection()
			return nil, errors.Wrapf(err, "invalid characteristic %q", u)
		}
		ch := prof.FindCharacteristic(ble.NewCharacteristic(uuid))
		if ch == nil {
			cln.CancelConnection()
			return nil, missingCharacteristic(address, u)
		}
		log.Tracef("characteristic %v at handle 0x%04x", u, ch.ValueHandle)
		l.chars[u] = ch
	}
	return l, nil
}

// Close releases the controller.
func (d *HCIDialer) Close() error {
	return d.dev.Stop()
}

type hciLink struct {
	client ble.Client
	chars  map[string]*ble.Characteristic
}

func (l *hciLink) WriteCharacteristic(ctx context.Context, selector string, value []byte, withResponse bool) error {
	ch, ok := l.chars[selector]
	if !ok {
		return unknownSelector(selector)
	}
	log.Tracef("write %v: %x", selector, value)
	done := make(chan error, 1)
	go func() {
		done <- l.client.WriteCharacteristic(ch, value, !withResponse)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *hciLink) Close() error {
	return l.client.CancelConnection()
}
