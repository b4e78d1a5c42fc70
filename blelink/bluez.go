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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// BluezDialer goes through the BlueZ daemon over D-Bus, which leaves the
// controller shared with other users.
type BluezDialer struct {
	adapter *bluetooth.Adapter
}

func NewBluezDialer(adapter string) (*BluezDialer, error) {
	if adapter == "" {
		adapter = "hci0"
	}
	a := bluetooth.NewAdapter(adapter)
	if err := a.Enable(); err != nil {
		return nil, errors.Wrapf(err, "cannot enable %v", adapter)
	}
	return &BluezDialer{adapter: a}, nil
}

type connectResult struct {
	dev bluetooth.Device
	err error
}

func (d *BluezDialer) Dial(ctx context.Context, address string, characteristics ...string) (Link, error) {
	mac, err := bluetooth.ParseMAC(address)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %q", address)
	}
	want := make(map[bluetooth.UUID]string, len(characteristics))
	for _, u := range characteristics {
		uuid, err := bluetooth.ParseUUID(u)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid characteristic %q", u)
		}
		want[uuid] = u
	}

	log.Debugf("dialing %v", address)
	res := make(chan connectResult, 1)
	go func() {
		dev, err := d.adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, bluetooth.ConnectionParams{})
		res <- connectResult{dev, err}
	}()
	var dev bluetooth.Device
	select {
	case r := <-res:
		if r.err != nil {
			return nil, errors.Wrapf(r.err, "cannot connect to %v", address)
		}
		dev = r.dev
	case <-ctx.Done():
		go func() {
			if r := <-res; r.err == nil {
				r.dev.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}

	l := &bluezLink{
		dev:   dev,
		chars: make(map[string]requestWriter, len(characteristics)),
	}
	if len(want) > 0 {
		if err := l.resolve(want); err != nil {
			dev.Disconnect()
			return nil, errors.Wrapf(err, "cannot resolve characteristics of %v", address)
		}
		for _, u := range characteristics {
			if _, ok := l.chars[u]; !ok {
				dev.Disconnect()
				return nil, missingCharacteristic(address, u)
			}
		}
	}
	return l, nil
}

// requestWriter is the write half of bluetooth.DeviceCharacteristic on
// Linux. WriteWithoutResponse there calls GattCharacteristic1.WriteValue
// without a "type" option, so BlueZ issues an ATT write request and the
// D-Bus call only returns once the device acknowledged it.
type requestWriter interface {
	WriteWithoutResponse(p []byte) (n int, err error)
}

type bluezLink struct {
	dev   bluetooth.Device
	chars map[string]requestWriter
}

func (l *bluezLink) resolve(want map[bluetooth.UUID]string) error {
	services, err := l.dev.DiscoverServices(nil)
	if err != nil {
		return err
	}
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return err
		}
		for _, ch := range chars {
			if u, ok := want[ch.UUID()]; ok {
				log.Tracef("characteristic %v in service %v", u, svc.UUID())
				l.chars[u] = ch
			}
		}
	}
	return nil
}

func (l *bluezLink) WriteCharacteristic(ctx context.Context, selector string, value []byte, withResponse bool) error {
	ch, ok := l.chars[selector]
	if !ok {
		return unknownSelector(selector)
	}
	if !withResponse {
		return errors.Errorf("write command to %v not supported by the bluez backend", selector)
	}
	log.Tracef("write %v: %x", selector, value)
	done := make(chan error, 1)
	go func() {
		_, err := ch.WriteWithoutResponse(value)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *bluezLink) Close() error {
	return l.dev.Disconnect()
}
