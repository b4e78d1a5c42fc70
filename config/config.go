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

// Package config loads the ble-clock configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/mvo5/ble-clock/blelink"
	"github.com/mvo5/ble-clock/clocksync"
	"github.com/mvo5/ble-clock/helper"
)

const (
	DefaultAdapter        = "hci0"
	DefaultConnectTimeout = 30 * time.Second
)

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Device is a clock that the run command keeps in sync.
type Device struct {
	Address string `yaml:"address"`
	Target  string `yaml:"target"`
	// Time is passed to direct-write devices as is.
	Time string `yaml:"time,omitempty"`
	// Schedule is a cron spec, e.g. "@daily" or "0 3 * * *".
	Schedule string `yaml:"schedule"`
}

type Config struct {
	Backend string `yaml:"backend"`
	Adapter string `yaml:"adapter"`
	// TimezoneOffset in hours; nil means the local zone at sync time.
	TimezoneOffset      *float64 `yaml:"timezone-offset,omitempty"`
	ConnectTimeout      Duration `yaml:"connect-timeout"`
	Helper              string   `yaml:"helper"`
	KeyedCharacteristic string   `yaml:"keyed-characteristic"`
	Devices             []Device `yaml:"devices,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend:             blelink.BackendHCI,
		Adapter:             DefaultAdapter,
		ConnectTimeout:      Duration(DefaultConnectTimeout),
		Helper:              helper.DefaultPath,
		KeyedCharacteristic: clocksync.QingpingCharacteristic,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/ble-clock/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "ble-clock", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %v", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %v", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case blelink.BackendHCI, blelink.BackendBluez:
	default:
		return errors.Errorf("unknown backend %q (allowed: %v, %v)", c.Backend, blelink.BackendHCI, blelink.BackendBluez)
	}
	if c.ConnectTimeout <= 0 {
		return errors.Errorf("connect-timeout must be positive, got %v", time.Duration(c.ConnectTimeout))
	}
	if c.TimezoneOffset != nil && (*c.TimezoneOffset < -12 || *c.TimezoneOffset > 14) {
		return errors.Errorf("timezone-offset %v outside [-12, 14]", *c.TimezoneOffset)
	}
	if _, err := ble.Parse(c.KeyedCharacteristic); err != nil {
		return errors.Wrapf(err, "invalid keyed-characteristic %q", c.KeyedCharacteristic)
	}
	for i, d := range c.Devices {
		if d.Address == "" {
			return errors.Errorf("device %d: missing address", i)
		}
		if _, err := clocksync.Lookup(d.Target); err != nil {
			return errors.Wrapf(err, "device %v", d.Address)
		}
		if _, err := cron.ParseStandard(d.Schedule); err != nil {
			return errors.Wrapf(err, "device %v: invalid schedule %q", d.Address, d.Schedule)
		}
	}
	return nil
}

// Offset returns the timezone offset in hours to use at t.
func (c *Config) Offset(t time.Time) float64 {
	if c.TimezoneOffset != nil {
		return *c.TimezoneOffset
	}
	_, secs := t.Zone()
	return float64(secs) / 3600
}
