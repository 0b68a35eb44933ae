package model

import (
	"fmt"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// Row is one flat input record produced by a collector's get+transform step.
// Values are scalars, lists of scalars, or nil. Rows are immutable once
// handed to the engine.
type Row map[string]any

// Kwargs is the flat mapping of constants supplied once per load or cleanup
// call. Every call must carry the run's staleness tag under KwargUpdateTag.
type Kwargs map[string]any

// Well-known kwarg keys.
const (
	// KwargUpdateTag carries the staleness tag identifying one sync run.
	// Every node and relationship written during the run is stamped with it.
	KwargUpdateTag = "UPDATE_TAG"

	// KwargSubResourceLabel and KwargSubResourceID carry the cleanup scope
	// for MatchLink loads; they are stamped onto every MatchLink
	// relationship so its cleanup can be scoped without an owning node.
	KwargSubResourceLabel = "_sub_resource_label"
	KwargSubResourceID    = "_sub_resource_id"
)

// Reserved graph property names.
const (
	// PropFirstSeen is stamped once, at creation, with the store's wall clock.
	PropFirstSeen = "firstseen"

	// PropLastUpdated is stamped on every write with the run's update tag.
	PropLastUpdated = "lastupdated"

	// PropSubResourceLabel and PropSubResourceID are the mandatory scoping
	// properties on every MatchLink relationship.
	PropSubResourceLabel = "_sub_resource_label"
	PropSubResourceID    = "_sub_resource_id"
)

// SubResourceRelLabel is the fixed relationship label connecting a node to
// its owning sub-resource parent.
const SubResourceRelLabel = "RESOURCE"

// UpdateTag returns the staleness tag for this call.
// A missing tag is a caller bug and is surfaced immediately.
func (k Kwargs) UpdateTag() (any, error) {
	tag, ok := k[KwargUpdateTag]
	if !ok {
		return nil, types.NewError(types.CONFIG_MISSING_KWARG,
			fmt.Sprintf("kwarg %q is not supplied", KwargUpdateTag))
	}
	return tag, nil
}
