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

package service

import (
	log "github.com/sirupsen/logrus"

	"github.com/mvo5/ble-clock/clocksync"
)

// LogObserver reports synchronization transitions to logger.
func LogObserver(logger log.FieldLogger) clocksync.Observer {
	return func(ev clocksync.Event) {
		entry := logger.WithFields(log.Fields{
			"attempt": ev.Attempt,
			"target":  ev.Target,
			"step":    ev.Step,
			"state":   ev.State.String(),
		})
		switch ev.State {
		case clocksync.StateFailed:
			entry.WithError(ev.Err).Error("step failed")
		case clocksync.StateDone:
			entry.Info("clock synchronized")
		default:
			entry.Debug("step done")
		}
	}
}
