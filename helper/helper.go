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

// Package helper runs the external tool that sets the clock of
// direct-write family devices.
package helper

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultPath is looked up in $PATH.
const DefaultPath = "bluetooth-clocks"

// Command invokes "<Path> set -a <address> [-t <time>]".
type Command struct {
	Path string
}

func (h *Command) path() string {
	if h.Path == "" {
		return DefaultPath
	}
	return h.Path
}

// Args returns the helper arguments for address and an optional time.
func Args(address, t string) []string {
	args := []string{"set", "-a", address}
	if t != "" {
		args = append(args, "-t", t)
	}
	return args
}

// SetClock runs the helper and waits for it. The helper's stderr is part
// of the returned error.
func (h *Command) SetClock(ctx context.Context, address, t string) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.path(), Args(address, t)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running %v", strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.Wrapf(err, "%v failed: %v", h.path(), msg)
		}
		return errors.Wrapf(err, "%v failed", h.path())
	}
	log.Infof("clock of %v set: %s", address, strings.TrimSpace(stdout.String()))
	return nil
}
