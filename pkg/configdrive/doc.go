// SPDX-License-Identifier: BSD-3-Clause

// Package configdrive renders a structured configdrive payload
// (user_data/meta_data/network_data/vendor_data) into an ISO9660 image a
// booted instance can mount read-only at /config-2. The Step Executor's
// store_configdrive wrapper calls a Builder only when the caller supplied
// the structured form; a caller-supplied raw byte blob bypasses building
// entirely.
package configdrive
