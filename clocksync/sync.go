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
	"io"
	"time"

	"github.com/pkg/errors"
)

// Device is an open BLE session borrowed for the duration of one
// synchronization. The selector names a characteristic the caller has
// already resolved; the core never opens or closes the session.
type Device interface {
	WriteCharacteristic(ctx context.Context, selector string, value []byte, withResponse bool) error
}

// DirectSetter sets the clock of a direct-write family device. t is the
// caller supplied time, passed through opaquely, "" meaning now.
type DirectSetter interface {
	SetClock(ctx context.Context, address, t string) error
}

// Request carries the per-call inputs of a synchronization.
type Request struct {
	// Attempt identifies the call in observer events.
	Attempt string
	// Address of the target device, used by the direct-write family.
	Address string
	// OffsetHours is added to the current time by the keyed family.
	OffsetHours float64
	// Time is only honoured by the direct-write family.
	Time string
}

// Synchronizer runs the write sequence of a device family. The zero value
// is usable for the keyed family. Distinct calls share no mutable state and
// may run concurrently for different devices.
type Synchronizer struct {
	// Rand is the session key source, nil means crypto/rand.
	Rand io.Reader
	// Now returns the wall clock time, nil means time.Now.
	Now func() time.Time
	// Direct is the helper used by the direct-write family.
	Direct DirectSetter
	// Observer, when set, is told about each transition.
	Observer Observer
}

// Synchronize runs the sequence for fam against dev and reports the first
// failure. It does not retry and does not roll back completed steps.
func (s *Synchronizer) Synchronize(ctx context.Context, dev Device, fam Family, req Request) error {
	if fam == nil {
		return &UnsupportedTargetError{}
	}
	return fam.synchronize(ctx, s, dev, req)
}

func (s *Synchronizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Synchronizer) emit(req Request, fam Family, step Step, state State, err error) {
	if s.Observer == nil {
		return
	}
	s.Observer(Event{
		Attempt: req.Attempt,
		Target:  fam.Tag(),
		Step:    step,
		State:   state,
		Err:     err,
	})
}

func (s *Synchronizer) fail(req Request, fam Family, step Step, err error) error {
	s.emit(req, fam, step, StateFailed, err)
	return err
}

// stepErr classifies a failed write or helper call.
func stepErr(ctx context.Context, step Step, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &CancelledError{Step: step, Err: ctxErr}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancelledError{Step: step, Err: err}
	}
	return &WriteError{Step: step, Err: err}
}

type keyedStep struct {
	step  Step
	next  State
	frame func() (Frame, error)
}

func (k KeyedWrite) synchronize(ctx context.Context, s *Synchronizer, dev Device, req Request) error {
	if dev == nil {
		return s.fail(req, k, StepInstallKey, &WriteError{Step: StepInstallKey, Err: errors.New("no connected device")})
	}
	selector := k.Characteristic()

	key, err := GenerateKey(s.Rand)
	if err != nil {
		return s.fail(req, k, StepGenerateKey, err)
	}
	s.emit(req, k, StepGenerateKey, StateKeyGenerated, nil)

	steps := []keyedStep{
		{StepInstallKey, StateKeyInstalled, func() (Frame, error) {
			return Frame{Prefix: KeyCommandPrefix, Payload: key[:]}, nil
		}},
		{StepAuthenticate, StateAuthenticated, func() (Frame, error) {
			return Frame{Prefix: AuthCommandPrefix, Payload: key[:]}, nil
		}},
		{StepWriteTime, StateDone, func() (Frame, error) {
			payload, err := EncodeTime(s.now().Unix(), req.OffsetHours)
			if err != nil {
				return Frame{}, err
			}
			return Frame{Prefix: EmptyPrefix, Payload: payload}, nil
		}},
	}
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return s.fail(req, k, st.step, &CancelledError{Step: st.step, Err: err})
		}
		frame, err := st.frame()
		if err != nil {
			return s.fail(req, k, st.step, err)
		}
		if err := dev.WriteCharacteristic(ctx, selector, frame.Bytes(), true); err != nil {
			return s.fail(req, k, st.step, stepErr(ctx, st.step, err))
		}
		s.emit(req, k, st.step, st.next, nil)
	}
	return nil
}

func (d DirectWrite) synchronize(ctx context.Context, s *Synchronizer, _ Device, req Request) error {
	if s.Direct == nil {
		return s.fail(req, d, StepDirectWrite, &WriteError{Step: StepDirectWrite, Err: errors.New("no direct-write helper configured")})
	}
	if err := ctx.Err(); err != nil {
		return s.fail(req, d, StepDirectWrite, &CancelledError{Step: StepDirectWrite, Err: err})
	}
	if err := s.Direct.SetClock(ctx, req.Address, req.Time); err != nil {
		return s.fail(req, d, StepDirectWrite, stepErr(ctx, StepDirectWrite, err))
	}
	s.emit(req, d, StepDirectWrite, StateDone, nil)
	return nil
}
