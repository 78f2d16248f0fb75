// SPDX-License-Identifier: Apache-2.0

package substrate

// TriggerFlags enables or disables individual rule groups of
// ServiceBasicSJSStateChangeTriggers (§4.3). Bit positions are part of the
// wire contract with callers that persist configured flag sets and must
// stay stable.
type TriggerFlags uint8

const (
	TriggerNone                   TriggerFlags = 0x00
	TriggerEnableInfoTriggered     TriggerFlags = 0x01
	TriggerEnableWaitingForStart   TriggerFlags = 0x02
	TriggerEnableAutoStart         TriggerFlags = 0x04
	TriggerEnablePausing           TriggerFlags = 0x08
	TriggerEnableStopping          TriggerFlags = 0x10
	TriggerEnableAborting          TriggerFlags = 0x20
	TriggerEnableRunning           TriggerFlags = 0x40
	TriggerEnableAbortedAtWork     TriggerFlags = 0x80

	// TriggerAll intentionally excludes TriggerEnableAbortedAtWork: the
	// source masks this spec was distilled from define All without it, and
	// §9's open question directs us to preserve that exactly rather than
	// silently redefine All. Callers that want the AbortedAtWork override
	// must OR it in explicitly alongside TriggerEnableAborting.
	TriggerAll TriggerFlags = 0x7F
)

// Has reports whether all bits of want are set in f.
func (f TriggerFlags) Has(want TriggerFlags) bool {
	return f&want == want
}
