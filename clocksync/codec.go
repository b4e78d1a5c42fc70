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
	"encoding/binary"
	"math"
)

const (
	timeMarker    = 0x05
	timeSubMarker = 0x09

	// TimePayloadSize is the length of an encoded keyed-family time payload.
	TimePayloadSize = 6
)

// EncodeTime converts a Unix timestamp and a timezone offset in hours into
// the keyed-family time payload: 0x05 0x09 followed by the adjusted
// timestamp as a little-endian uint32.
//
// The offset is folded into the transmitted value, the device keeps local
// wall clock time. Adjusted values outside the uint32 range are rejected
// with an *EncodingError rather than wrapped.
func EncodeTime(timestamp int64, offsetHours float64) ([]byte, error) {
	adjusted := math.Trunc(float64(timestamp) + offsetHours*3600)
	if math.IsNaN(adjusted) || adjusted < 0 || adjusted > math.MaxUint32 {
		return nil, &EncodingError{Timestamp: timestamp, OffsetHours: offsetHours, Adjusted: adjusted}
	}

	buf := make([]byte, TimePayloadSize)
	buf[0] = timeMarker
	buf[1] = timeSubMarker
	binary.LittleEndian.PutUint32(buf[2:], uint32(adjusted))
	return buf, nil
}
