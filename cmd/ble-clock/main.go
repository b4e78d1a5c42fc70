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
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/mvo5/ble-clock/blelink"
	"github.com/mvo5/ble-clock/config"
	"github.com/mvo5/ble-clock/helper"
	"github.com/mvo5/ble-clock/service"
)

var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

type options struct {
	Config  string `long:"config" value-name:"<path>" description:"Configuration file"`
	Backend string `long:"backend" choice:"hci" choice:"bluez" description:"BLE stack to use (default from config, hci)"`
	Adapter string `long:"adapter" value-name:"<name>" description:"Bluetooth adapter, e.g. hci0"`
	Verbose []bool `short:"v" long:"verbose" description:"Increase verbosity, repeat for trace output"`
}

var opts options

var signalContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newParser() *flags.Parser {
	opts = options{}
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	p.ShortDescription = "Set the clock of Bluetooth LE sensor devices"
	mustAdd(p.AddCommand("set", "Set the clock of one device",
		"Connect to the device at <mac-address> and set its clock using the protocol of <target> (lywsd02, CGD1).",
		&cmdSet{}))
	mustAdd(p.AddCommand("run", "Keep the configured devices in sync",
		"Set the clock of every device listed in the configuration file on its cron schedule.",
		&cmdRun{}))
	return p
}

func mustAdd(_ *flags.Command, err error) {
	if err != nil {
		panic(err)
	}
}

func setupLogging() {
	log.SetOutput(Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	switch len(opts.Verbose) {
	case 0:
		log.SetLevel(log.InfoLevel)
	case 1:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.TraceLevel)
	}
}

func loadConfig() (*config.Config, error) {
	path := opts.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Adapter != "" {
		cfg.Adapter = opts.Adapter
	}
	log.Debugf("config %v: backend %v adapter %v", path, cfg.Backend, cfg.Adapter)
	return cfg, nil
}

// newService returns the service for cfg and a function releasing the
// adapter once the service is no longer used.
func newService(cfg *config.Config) (*service.Service, func()) {
	dialer := blelink.Lazy(cfg.Backend, cfg.Adapter)
	release := func() {
		if err := dialer.Close(); err != nil {
			log.Debugf("cannot release adapter %v: %v", cfg.Adapter, err)
		}
	}
	return &service.Service{
		Dialer:              dialer,
		Direct:              &helper.Command{Path: cfg.Helper},
		KeyedCharacteristic: cfg.KeyedCharacteristic,
		Offset:              cfg.Offset,
		Timeout:             cfg.ConnectTimeout.Duration(),
		Observer:            service.LogObserver(log.StandardLogger()),
	}, release
}

func run(args []string) error {
	_, err := newParser().ParseArgs(args)
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(Stdout, e.Message)
			os.Exit(0)
		}
		fmt.Fprintf(Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
