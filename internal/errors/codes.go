package errors

// Error codes used in diagnostics and error messages, so failures stay
// identifiable across the toolchain.
//
// Code ranges:
// E0001-E0099: expression-notation errors
// E0100-E0199: flow-graph structural misuse (the flow package's panic and
// error messages do not include these codes)
const (
	// E0001: expression notation does not parse
	ErrorBadNotation = "E0001"

	// E0002: literal does not fit its declared width
	ErrorBadWidth = "E0002"

	// E0100: edge or root references a key with no node
	ErrorUnknownNode = "E0100"

	// E0101: analysis requested on an unrooted graph
	ErrorUnrootedGraph = "E0101"
)
