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
	"encoding/binary"
	"math"

	. "gopkg.in/check.v1"

	"github.com/mvo5/ble-clock/clocksync"
)

type codecSuite struct{}

var _ = Suite(&codecSuite{})

func (s *codecSuite) TestEncodeTimeKnownValue(c *C) {
	b, err := clocksync.EncodeTime(1700000000, 0)
	c.Assert(err, IsNil)
	c.Check(b, DeepEquals, []byte{0x05, 0x09, 0x00, 0xf1, 0x53, 0x65})
}

func (s *codecSuite) TestEncodeTimeOffsets(c *C) {
	for _, tc := range []struct {
		ts     int64
		offset float64
		want   uint32
	}{
		{1700000000, 2, 1700007200},
		{1700000000, -5, 1699982000},
		{1700000000, 5.5, 1700019800},
		// 0.36s is truncated away
		{1700000000, 0.0001, 1700000000},
		{0, 0, 0},
		{math.MaxUint32 - 3600, 1, math.MaxUint32},
	} {
		b, err := clocksync.EncodeTime(tc.ts, tc.offset)
		c.Assert(err, IsNil, Commentf("%v", tc))
		c.Assert(b, HasLen, clocksync.TimePayloadSize)
		c.Check(b[:2], DeepEquals, []byte{0x05, 0x09})
		c.Check(binary.LittleEndian.Uint32(b[2:]), Equals, tc.want, Commentf("%v", tc))
	}
}

func (s *codecSuite) TestEncodeTimeOutOfRange(c *C) {
	for _, tc := range []struct {
		ts     int64
		offset float64
	}{
		{0, -1},
		{-1, 0},
		{math.MaxUint32, 1},
		{math.MaxUint32 + 1, 0},
		{0, math.NaN()},
	} {
		b, err := clocksync.EncodeTime(tc.ts, tc.offset)
		c.Check(b, IsNil)
		c.Assert(err, FitsTypeOf, &clocksync.EncodingError{}, Commentf("%v", tc))
		c.Check(err, ErrorMatches, "cannot encode time: adjusted timestamp .* out of range .*")
	}
}

func (s *codecSuite) TestFrameBytes(c *C) {
	f := clocksync.Frame{Prefix: clocksync.KeyCommandPrefix, Payload: []byte{1, 2, 3}}
	c.Check(f.Bytes(), DeepEquals, []byte{0x11, 0x01, 1, 2, 3})

	f = clocksync.Frame{Prefix: clocksync.EmptyPrefix, Payload: []byte{4}}
	c.Check(f.Bytes(), DeepEquals, []byte{4})
}
