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

// Package service implements set_clock: pick the device family for a
// target tag, connect when the family needs it, synchronize and release
// the connection.
package service

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mvo5/ble-clock/blelink"
	"github.com/mvo5/ble-clock/clocksync"
)

// StepConnect is reported when the device could not be dialed.
const StepConnect clocksync.Step = "connect"

type Request struct {
	Address string
	Target  string
	// Time is only used by the direct-write family.
	Time string
}

// Result is the outcome of one SetClock call.
type Result struct {
	Attempt     string           `json:"attempt"`
	Address     string           `json:"address"`
	Target      string           `json:"target"`
	OffsetHours float64          `json:"offset-hours"`
	Steps       []clocksync.Step `json:"steps"`
	FailedStep  clocksync.Step   `json:"failed-step,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// OK tells whether the whole sequence for the target completed.
func (r *Result) OK() bool {
	return r.Error == ""
}

type Service struct {
	Dialer blelink.Dialer
	// Direct handles direct-write family targets.
	Direct clocksync.DirectSetter
	// KeyedCharacteristic overrides the keyed family default.
	KeyedCharacteristic string
	// Offset returns the timezone offset in hours to apply at t.
	Offset func(t time.Time) float64
	// Timeout bounds dialing plus synchronization, 0 for none.
	Timeout time.Duration
	// Observer, when set, also receives every transition.
	Observer clocksync.Observer

	// Rand and Now are handed to the synchronizer.
	Rand io.Reader
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SetClock synchronizes the clock of the device at req.Address. The
// returned Result is always non-nil and mirrors the returned error.
func (s *Service) SetClock(ctx context.Context, req Request) (*Result, error) {
	res := &Result{
		Attempt: uuid.New().String(),
		Address: req.Address,
		Target:  req.Target,
	}
	fail := func(step clocksync.Step, err error) (*Result, error) {
		res.FailedStep = step
		res.Error = err.Error()
		return res, err
	}

	fam, err := clocksync.Lookup(req.Target)
	if err != nil {
		return fail(clocksync.StepSelectFamily, err)
	}
	res.Target = fam.Tag()
	if _, err := net.ParseMAC(req.Address); err != nil {
		return fail(clocksync.StepSelectFamily, errors.Wrap(err, "invalid address"))
	}
	if k, ok := fam.(clocksync.KeyedWrite); ok {
		if s.KeyedCharacteristic != "" {
			k.Char = s.KeyedCharacteristic
			fam = k
		}
		if req.Time != "" {
			log.Debugf("%v: ignoring time %q, keyed targets are set to the current time", req.Address, req.Time)
		}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var dev clocksync.Device
	if char := fam.Characteristic(); char != "" {
		if s.Dialer == nil {
			return fail(StepConnect, errors.New("no dialer configured"))
		}
		link, err := s.Dialer.Dial(ctx, req.Address, char)
		if err != nil {
			return fail(StepConnect, dialErr(ctx, err))
		}
		defer func() {
			if err := link.Close(); err != nil {
				log.Debugf("%v: cannot disconnect: %v", req.Address, err)
			}
		}()
		dev = link
	}

	sreq := clocksync.Request{
		Attempt: res.Attempt,
		Address: req.Address,
		Time:    req.Time,
	}
	if s.Offset != nil {
		sreq.OffsetHours = s.Offset(s.now())
	}
	res.OffsetHours = sreq.OffsetHours

	syncer := &clocksync.Synchronizer{
		Rand:   s.Rand,
		Now:    s.Now,
		Direct: s.Direct,
		Observer: func(ev clocksync.Event) {
			if ev.State != clocksync.StateFailed {
				res.Steps = append(res.Steps, ev.Step)
			}
			if s.Observer != nil {
				s.Observer(ev)
			}
		},
	}
	if err := syncer.Synchronize(ctx, dev, fam, sreq); err != nil {
		step, _ := clocksync.FailedStep(err)
		return fail(step, err)
	}
	return res, nil
}

// dialErr reports a dial aborted by the caller as cancelled.
func dialErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &clocksync.CancelledError{Step: StepConnect, Err: ctxErr}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &clocksync.CancelledError{Step: StepConnect, Err: err}
	}
	return err
}
