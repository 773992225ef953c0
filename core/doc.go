// Package core defines the domain contracts shared by all genmesh
// components: the Agent capability, content requests and responses, the
// task state machine, match items and results, and the store interfaces
// (cache, candidate source, similarity scorer).
//
// The canonical interfaces live here to avoid dependency cycles and keep
// domain contracts central. Implementation packages (cache, semantic,
// agent, ...) provide backends that can be swapped without touching
// calling code. Callers should depend on these interfaces rather than
// concrete types so they can substitute alternatives in tests or
// production.
package core
