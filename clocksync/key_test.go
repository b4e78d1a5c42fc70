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
	"bytes"

	. "gopkg.in/check.v1"

	"github.com/mvo5/ble-clock/clocksync"
)

type keySuite struct{}

var _ = Suite(&keySuite{})

func (s *keySuite) TestGenerateKeyFromReader(c *C) {
	src := bytes.Repeat([]byte{0xab}, 20)
	k, err := clocksync.GenerateKey(bytes.NewReader(src))
	c.Assert(err, IsNil)
	c.Check(k[:], DeepEquals, src[:16])
	c.Check(k.String(), Equals, "abababababababababababababababab")
}

func (s *keySuite) TestGenerateKeyShortRead(c *C) {
	_, err := clocksync.GenerateKey(bytes.NewReader([]byte{1, 2, 3}))
	c.Assert(err, FitsTypeOf, &clocksync.KeyError{})
	c.Check(err, ErrorMatches, "cannot generate session key: unexpected EOF")
	step, ok := clocksync.FailedStep(err)
	c.Check(ok, Equals, true)
	c.Check(step, Equals, clocksync.StepGenerateKey)
}

func (s *keySuite) TestGenerateKeyUnique(c *C) {
	seen := make(map[clocksync.SessionKey]bool)
	for i := 0; i < 1000; i++ {
		k, err := clocksync.GenerateKey(nil)
		c.Assert(err, IsNil)
		c.Assert(seen[k], Equals, false)
		seen[k] = true
	}
}
