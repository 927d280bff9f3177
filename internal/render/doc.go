// Package render implements the canvas drawing context and pixel picking.
//
// An EchoRenderer draws every call twice. The visible surface gets the
// program's real output. The shadow surface gets the same geometry painted
// in a flat color that encodes the call's index, so reading one shadow pixel
// tells which call last painted it. Partly covered edge pixels are not fully
// opaque and decode to 0.
//
// # Call indices
//
// Indices are assigned per run by an Indexer. The counter starts at 1 and
// every geometry-producing call advances it:
//
//	index = (index + Stride) % Modulus    Stride = 464651, Modulus = 16777213
//
// Modulus is prime and below 2^24, so an index is exactly one RGB color and
// the sequence visits every residue before repeating. Index 0 is never
// produced and stands for background. Calls that only change state
// (beginPath, moveTo, style assignments) do not advance the index.
//
// Because indices depend only on call order, a second run of the same
// program with the same input assigns the same index to the same call. The
// HighlightCoordinator relies on that: hovering decodes the index under the
// pointer, then re-runs the program and reports the site of the call that
// reaches the same index.
//
// # Highlighting
//
// With a target set, the matching call is drawn again in HighlightColor.
// Highlight-all mode (StartHighlighting) paints every geometry call that way. A highlighted clearRect
// shows the area it cleared.
package render
