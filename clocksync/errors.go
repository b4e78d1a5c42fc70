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
	"fmt"

	"github.com/pkg/errors"
)

// Step names one individually failable stage of a synchronization.
type Step string

const (
	StepSelectFamily Step = "select-family"
	StepGenerateKey  Step = "generate-key"
	StepInstallKey   Step = "install-key"
	StepAuthenticate Step = "authenticate"
	StepWriteTime    Step = "write-time"
	StepDirectWrite  Step = "direct-write"
)

// UnsupportedTargetError is returned for a family tag that is not known.
// No BLE I/O happens before it is reported.
type UnsupportedTargetError struct {
	Target string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q", e.Target)
}

// WriteError reports a characteristic write, or a direct helper call, that
// failed or was not acknowledged.
type WriteError struct {
	Step Step
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot %s: %v", e.Step, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// EncodingError reports an adjusted timestamp outside the uint32 range.
type EncodingError struct {
	Timestamp   int64
	OffsetHours float64
	Adjusted    float64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode time: adjusted timestamp %.0f (%d%+gh) out of range [0, %d]",
		e.Adjusted, e.Timestamp, e.OffsetHours, uint32(1<<32-1))
}

// CancelledError reports that the caller aborted the synchronization
// before Step completed.
type CancelledError struct {
	Step Step
	Err  error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled during %s: %v", e.Step, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// KeyError reports a failure of the random source used for session keys.
type KeyError struct {
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("cannot generate session key: %v", e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// FailedStep returns the step a synchronization error is attributed to.
func FailedStep(err error) (Step, bool) {
	var (
		unsupported *UnsupportedTargetError
		werr        *WriteError
		cerr        *CancelledError
		eerr        *EncodingError
		kerr        *KeyError
	)
	switch {
	case err == nil:
		return "", false
	case errors.As(err, &werr):
		return werr.Step, true
	case errors.As(err, &cerr):
		return cerr.Step, true
	case errors.As(err, &eerr):
		return StepWriteTime, true
	case errors.As(err, &kerr):
		return StepGenerateKey, true
	case errors.As(err, &unsupported):
		return StepSelectFamily, true
	}
	return "", false
}
