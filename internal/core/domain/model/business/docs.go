// Package business contains the Business aggregate: the dispatch-facing view
// of a merchant that orders originate from.
//
// A business carries a Type discriminant (restaurant, store, pharmacy,
// kitchen) and at most one type-specific Detail payload whose Kind must match
// the discriminant. This keeps every business in a single record with no
// parallel per-type collections to synchronize.
package business
