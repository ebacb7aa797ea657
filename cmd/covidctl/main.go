// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/saluddata/covidctl/cmd/covidctl/config"
	"github.com/saluddata/covidctl/pkg/logging"
	"github.com/spf13/cobra"
)

var appLogger *logging.Logger

func main() {
	defer func() {
		if appLogger != nil {
			appLogger.Close()
		}
	}()
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	prev := rootCmd.PersistentPreRun
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if prev != nil {
			prev(cmd, args)
		}
		if err := config.Load(); err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		if backendURL != "" {
			config.Global.Backend.BaseURL = backendURL
		}
		if logLevel != "" {
			config.Global.Logging.Level = logLevel
		}

		appLogger = logging.New(logging.Config{
			Level:   logging.ParseLevel(config.Global.Logging.Level),
			LogDir:  config.Global.Logging.Dir,
			Service: "covidctl",
			Quiet:   true,
		})
	}
}
