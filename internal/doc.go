// Package internal holds primitives shared by the mailauth engine that
// are not part of the public API surface.
package internal
