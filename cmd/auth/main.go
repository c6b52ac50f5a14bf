// Package main is the entry point for the accounts service.
package main

import (
	"os"

	"github.com/aussiebroadwan/accounts/internal/auth/app"
)

//go:generate swag init -g internal/auth/http/router.go -d ../../ -o ../../api/auth --outputTypes go

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if version != "dev" {
		app.BuildVersion = version
	}

	cmd := NewRootCmd()
	cmd.Version = app.BuildVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
