// Package types contains the shared data model of the delegation engine.
//
// It is the lowest-level package in the module and has no internal
// dependencies, so every other package (expertise, delegation,
// collaboration, registry) can import it without circular imports.
package types
