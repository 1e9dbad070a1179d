// Copyright 2026 The Veltrack Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app provides the scaffolding shared by Veltrack binaries: cobra
// command construction, config file and environment binding, and POSIX
// signal handling.
package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Adjusts GOMAXPROCS to the container CPU quota.
	_ "go.uber.org/automaxprocs"
)

// RunFunc is the application's run callback.
type RunFunc func() error

// CliOptions is the contract an application's option aggregate fulfills.
type CliOptions interface {
	// AddFlags registers all flags on the command's flag set.
	AddFlags(cmd *cobra.Command)

	// Complete fills in derived or defaulted values after parsing.
	Complete() error

	// Validate checks the final option values.
	Validate() error
}

// App is a command line application.
type App struct {
	name        string
	shortDesc   string
	description string
	options     CliOptions
	runFunc     RunFunc

	cmd *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions attaches the option aggregate whose flags and config binding
// the command carries.
func WithOptions(opts CliOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc sets the run callback.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithDescription sets the long command description.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// NewApp creates an App.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.runCommand,
	}

	addConfigFlag(cmd, a.name)
	if a.options != nil {
		a.options.AddFlags(cmd)
	}

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	// Environment first, so config binding can see .env values.
	_ = godotenv.Load()

	if a.options != nil {
		if err := bindConfig(cmd, a.options); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.runFunc != nil {
		return a.runFunc()
	}
	return nil
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the application and reports the failure on stderr.
func (a *App) Run() error {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
