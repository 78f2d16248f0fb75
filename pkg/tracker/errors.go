// SPDX-License-Identifier: Apache-2.0

package tracker

import "errors"

// ErrAlreadySetup names the error for setting up the same tracker twice.
// Setup itself does not return it: each Setup call builds a new tracker.
var ErrAlreadySetup = errors.New("tracker: already set up")

// ErrReentrantService guards against reentrant Service-family calls under
// the single-threaded model (§5): an implementation may use a cheap
// non-reentrant guard and must fail fast on reentry.
var ErrReentrantService = errors.New("tracker: reentrant service call")
