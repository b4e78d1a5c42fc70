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

package clocksync_test

import (
	. "gopkg.in/check.v1"

	"github.com/mvo5/ble-clock/clocksync"
)

type familySuite struct{}

var _ = Suite(&familySuite{})

func (s *familySuite) TestLookup(c *C) {
	for _, tc := range []struct {
		tag  string
		want clocksync.Family
	}{
		{"lywsd02", clocksync.DirectWrite{}},
		{"LYWSD02", clocksync.DirectWrite{}},
		{"CGD1", clocksync.KeyedWrite{}},
		{" cgd1 ", clocksync.KeyedWrite{}},
	} {
		fam, err := clocksync.Lookup(tc.tag)
		c.Assert(err, IsNil, Commentf(tc.tag))
		c.Check(fam, Equals, tc.want)
	}
}

func (s *familySuite) TestLookupUnsupported(c *C) {
	for _, tag := range []string{"", "cgc1", "lywsd03mmc"} {
		fam, err := clocksync.Lookup(tag)
		c.Check(fam, IsNil)
		c.Assert(err, FitsTypeOf, &clocksync.UnsupportedTargetError{})
		c.Check(err, ErrorMatches, `unsupported target ".*"`)
		step, ok := clocksync.FailedStep(err)
		c.Check(ok, Equals, true)
		c.Check(step, Equals, clocksync.StepSelectFamily)
	}
}

func (s *familySuite) TestCharacteristic(c *C) {
	c.Check(clocksync.DirectWrite{}.Characteristic(), Equals, "")
	c.Check(clocksync.KeyedWrite{}.Characteristic(), Equals, clocksync.QingpingCharacteristic)
	c.Check(clocksync.KeyedWrite{Char: "fff1"}.Characteristic(), Equals, "fff1")
}

func (s *familySuite) TestStateString(c *C) {
	c.Check(clocksync.StateAuthenticated.String(), Equals, "authenticated")
	c.Check(clocksync.State(0).String(), Equals, "unknown")
}
