// Package augment describes the virtualized globals handed to a sandboxed
// program.
//
// An Object is a named set of properties. Each Property is one of two fixed
// variants:
//
//   - Variable: a trapped accessor pair (Get, Set), e.g. document.onkeydown
//   - Method:   a trapped call (Invoke), e.g. canvas.fillRect(...)
//
// The sandboxed runtime owns the trapping mechanism; this package only defines
// the descriptors the core components construct once per instantiation.
//
// Values crossing the boundary are plain Go values: float64, string, bool, nil,
// or Func for references to functions declared by the program.
package augment
