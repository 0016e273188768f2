/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a mutating operation is attempted by a
// non-privileged actor. It is raised client-side before any dispatch; the
// server refuses independently.
var ErrUnauthorized = errors.New("admin access required")

// ErrPageNotMounted is returned by coordinate transforms when the target page
// has no measurable rectangle. Callers fall back to a cached rectangle or
// defer; it is never surfaced to the operator.
var ErrPageNotMounted = errors.New("page not mounted")

// ValidationError reports a missing or out-of-range field, rejected before
// any network call and surfaced inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a network or storage failure on a scheduled write.
// Local optimistic state and the pending buffer survive it; it surfaces as a
// non-blocking notification only.
type PersistenceError struct {
	Op        string
	ElementID int64
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.ElementID != 0 {
		return fmt.Sprintf("%s element %d: %v", e.Op, e.ElementID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
