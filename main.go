// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/CodeGang4/jobgeo/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
