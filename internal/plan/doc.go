// Package plan compiles the mapping of one transfer type into a Plan: two
// ordered lists of field converters, one per direction.
//
// Build pipeline:
//  1. Look up the type mapping and resolve the domain type
//  2. Walk the visible fields of the transfer type
//     - Skip excluded, ignored and embedded fields
//     - Resolve the transfer accessor and the domain accessor path
//     - Resolve the type converter (explicit first, then the registry)
//     - Wrap with a tag predicate when the field declares tag rules
//  3. Resolve pre and post hooks
//  4. Lock the plan
package plan
