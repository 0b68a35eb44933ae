// Package model defines the declarative schema descriptors consumed by the
// sync engine.
//
// A NodeSchema declares a node label, its property bindings, an optional
// sub-resource relationship to the owning tenant-like parent, and any number
// of additional relationships whose targets are matched against nodes already
// in the graph. A MatchLinkSchema declares a relationship-only entity where
// both endpoints are matched against pre-existing nodes.
//
// Schemas are pure data: they are constructed once at process start, validated
// fail-fast, and interpreted by the querybuilder package. Bindings are a
// closed union resolving each declared property to a row field, a per-call
// constant (kwarg), or a one-to-many fan-out list.
//
// Example:
//
//	widget := model.NewNodeSchema("Widget").
//	    WithKeyProperty("id", model.FromRow("id")).
//	    WithProperty("name", model.FromRow("name")).
//	    WithSubResource("Account", model.Match("id", model.FromKwargs("ACCOUNT_ID")))
//	if err := widget.Validate(); err != nil {
//	    // malformed schema, fail before any store mutation
//	}
package model
