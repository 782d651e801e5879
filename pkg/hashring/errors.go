// SPDX-License-Identifier: BSD-3-Clause

package hashring

import "errors"

// ErrEmptyRing indicates a lookup was attempted against a ring with no members.
var ErrEmptyRing = errors.New("hashring: no conductors registered")
