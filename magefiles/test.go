//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// Test groups test targets.
type Test mg.Namespace

// All runs every test verbosely with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "-race", "./...")
}

// Unit runs every test without the race detector.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs the store and backend packages under the race detector with
// repeated runs to shake out ordering bugs.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "-count=5", "./pkg/store/...", "./internal/...")
}

// Cover writes a coverage profile and prints per-function coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}
