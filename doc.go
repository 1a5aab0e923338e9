// Package localplan translates a logical query plan tree into a set of
// driver factories: linear pipelines of physical operators that a worker's
// driver runtime can instantiate and run in parallel.
//
// The package is organized the way the stream library it is descended from
// was: a root package holding the data model and the planning algorithm,
// an operator subpackage holding the physical operator contract and its
// built-in constructors, and a runtime subpackage holding the seams the
// planner exposes to the driver runtime (local-merge sources, merge-join
// sources, the driver execution loop).
package localplan
