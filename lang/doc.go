// Package lang compiles scene documents into an object graph.
//
// A scene is a single YAML document. Its root mapping is the world, and its
// data sequence lists the objects to render. Every mapping is an object whose
// variant is chosen from its keys (see [Classify]):
//
//	color: [200, 40, 40]          # inherited by everything below
//	tri:                          # a strip bound to a name, not rendered
//	  strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
//	data:
//	  - tri                       # render the blueprint as is
//	  - instance: tri             # and again, transformed
//	    scale: [2, 1, 1]
//	    rotate: [0, 0, 90]        # degrees about x, then y, then z
//	    translate: [1, 0, 0]
//	    color: [40, 40, 200]
//	  - origin: [0, 0, -1]
//	    direction: [0, 0, 1]
//	    max: 10
//
// # References and scoping
//
// Strings are references, never literals. A reference is resolved against
// the fields of the enclosing custom objects, innermost first, so a nearer
// definition shadows an outer one. The fields of one custom object may refer
// to each other in any order; its data entries see all of them.
//
// The identifiers data, true, false, instance, ray and strip are reserved
// and cannot name a field or a reference.
//
// # Errors
//
// [Build] stops at the first error. Every error is an [*Error] whose
// [ErrorKind] can be matched with [errors.Is] against the sentinels such as
// [ErrUnresolvedReference], and whose [Error.Path] locates the object.
package lang
