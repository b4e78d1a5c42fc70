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

package main

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mvo5/ble-clock/service"
)

type cmdSet struct {
	Time   string `short:"t" long:"time" value-name:"<time>" description:"Time to set, only honoured by lywsd02 targets"`
	Offset string `long:"offset" value-name:"<hours>" description:"Timezone offset in hours (default from config, or the local zone)"`

	Positional struct {
		Address string `positional-arg-name:"<mac-address>"`
		Target  string `positional-arg-name:"<target>"`
	} `positional-args:"yes" required:"yes"`
}

func (x *cmdSet) Execute(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("too many arguments: %v", args)
	}
	setupLogging()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if x.Offset != "" {
		off, err := strconv.ParseFloat(x.Offset, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid offset %q", x.Offset)
		}
		cfg.TimezoneOffset = &off
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	svc, release := newService(cfg)
	defer release()

	res, err := svc.SetClock(ctx, service.Request{
		Address: x.Positional.Address,
		Target:  x.Positional.Target,
		Time:    x.Time,
	})
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil && err == nil {
		return encErr
	}
	return err
}
