// SPDX-License-Identifier: Apache-2.0

package substrate

import "github.com/majewsky/gg/option"

// Info is the observed snapshot of a substrate object as published by the
// E039 object store (§3). Trackers never mutate a Info themselves; it is
// replaced wholesale whenever an Observer refreshes.
type Info struct {
	STS  STS
	SPS  SPS
	SJRS SJRS

	// InferredSPS is the monotone merge of the observed SPS with any
	// recorded step-level SPS values (§4.5). It is published alongside SPS
	// and can differ from it, e.g. after a pending SPS update.
	InferredSPS SPS

	// LocID is the current location name, or None if the substrate is not
	// resident anywhere (e.g. in transit).
	LocID option.Option[string]

	// LinkToSrc and LinkToDest are the substrate's fixed source/destination
	// location identities, as configured on the substrate object itself.
	LinkToSrc  option.Option[string]
	LinkToDest option.Option[string]

	// IsFinal is true once the substrate object has been removed from the
	// store.
	IsFinal bool

	// IsEmpty is true when the observed location is reporting no occupant,
	// which is unexpected once a substrate has been assigned there.
	IsEmpty bool
}

// IsAtSrcLoc reports whether LocID equals LinkToSrc (both present and
// equal).
func (i Info) IsAtSrcLoc() bool {
	if i.LocID.IsNone() || i.LinkToSrc.IsNone() {
		return false
	}
	return i.LocID.Unwrap() == i.LinkToSrc.Unwrap()
}

// IsAtDestLoc reports whether LocID equals LinkToDest (both present and
// equal).
func (i Info) IsAtDestLoc() bool {
	if i.LocID.IsNone() || i.LinkToDest.IsNone() {
		return false
	}
	return i.LocID.Unwrap() == i.LinkToDest.Unwrap()
}
