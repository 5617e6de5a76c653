// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks values that cross a trust boundary before they
// reach storage.
//
// A [Validator] validates a whole value or, when field names are given, only
// those fields. Validators never decrypt anything: the envelope server holds
// no key, so only structure, identifiers and size are checked.
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to specific named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
