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
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mvo5/ble-clock/config"
	"github.com/mvo5/ble-clock/service"
)

type cmdRun struct {
	Now bool `long:"now" description:"Also sync every device once at startup"`
}

func syncDevice(ctx context.Context, svc *service.Service, d config.Device) {
	res, err := svc.SetClock(ctx, service.Request{
		Address: d.Address,
		Target:  d.Target,
		Time:    d.Time,
	})
	entry := log.WithFields(log.Fields{"attempt": res.Attempt, "address": d.Address})
	if err != nil {
		entry.WithField("step", res.FailedStep).Warnf("cannot set clock: %v", err)
		return
	}
	entry.Infof("clock set (%v)", res.Target)
}

func (x *cmdRun) Execute(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("too many arguments: %v", args)
	}
	setupLogging()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Devices) == 0 {
		return errors.New("no devices configured")
	}

	ctx, stop := signalContext()
	defer stop()

	svc, release := newService(cfg)
	defer release()
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	for _, d := range cfg.Devices {
		// a device still syncing from the previous run is skipped
		job := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
			syncDevice(ctx, svc, d)
		}))
		if _, err := c.AddJob(d.Schedule, job); err != nil {
			return errors.Wrapf(err, "cannot schedule %v", d.Address)
		}
		log.Infof("scheduled %v (%v) at %q", d.Address, d.Target, d.Schedule)
		if x.Now {
			job.Run()
		}
	}

	c.Start()
	<-ctx.Done()
	log.Infof("stopping")
	<-c.Stop().Done()
	return nil
}
