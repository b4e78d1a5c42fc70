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

// State is a position in the synchronization state machine.
type State int

const (
	StateStart State = iota + 1
	StateKeyGenerated
	StateKeyInstalled
	StateAuthenticated
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateKeyGenerated:
		return "key-generated"
	case StateKeyInstalled:
		return "key-installed"
	case StateAuthenticated:
		return "authenticated"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Event describes one transition of a synchronization.
type Event struct {
	Attempt string
	Target  string
	Step    Step
	// State is the state entered once Step finished.
	State State
	// Err is set when State is StateFailed.
	Err error
}

// Observer is notified of every transition. It runs synchronously on the
// synchronizing goroutine and must not block.
type Observer func(Event)
