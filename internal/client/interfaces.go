// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run executes the command given by args and blocks until it finishes.
	Run(args []string) error
}

// Prompter asks the user for input.
type Prompter interface {
	// Secret reads a value without echoing it.
	Secret(prompt string) (string, error)
	// Line reads one line of visible input.
	Line(prompt string) (string, error)
}
