//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the linkage project using Mage.
//
// Usage:
//
//	mage build          Compile the linkage binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the CLI package
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Write a coverage profile to bin/coverage.out
//	mage lint           Run golangci-lint
//	mage vet            Run go vet
//	mage clean          Remove build artifacts
//	mage install        Install linkage to GOPATH/bin
package main

// Default target when mage runs without arguments.
var Default = Build
