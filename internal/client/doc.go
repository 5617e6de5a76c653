// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the journal vault command line.
//
// Every command opens the configured journal, prompts for the secret without
// echo when it needs the key, runs one operation through
// [service.ClientServices] and locks the session before the process exits.
// The session command keeps one unlocked session open and locks it after the
// configured idle timeout.
package client
