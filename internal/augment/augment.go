package augment

import (
	"fmt"
	"sort"
)

// Kind discriminates the Property variants.
type Kind int

const (
	// KindVariable is a property with trapped get/set accessors.
	KindVariable Kind = iota + 1
	// KindMethod is a property whose value is a trapped function.
	KindMethod
)

// String returns the descriptor name used by runtimes and documentation.
func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindMethod:
		return "function"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Site is an opaque reference to the source location of a trapped access.
// Runtimes fill it with whatever their editor collaborator understands
// (luahost uses "chunk:line").
type Site string

// Func references a function declared by the sandboxed program.
//
// Name is the declared global name. An empty Name means the runtime saw a
// function value that was not declared by the program (an anonymous function
// or a builtin), which registration slots reject.
type Func struct {
	Name string
}

// Declared reports whether the reference names a program-declared function.
func (f Func) Declared() bool {
	return f.Name != ""
}

// Getter reads a Variable property.
type Getter func(site Site) any

// Setter writes a Variable property. A returned error is surfaced to the
// sandboxed program's error channel.
type Setter func(site Site, value any) error

// Invoker performs a Method call.
type Invoker func(site Site, args []any) (any, error)

// Property is a single named entry of an augmented Object.
type Property struct {
	Name    string
	Info    string // documentation key, e.g. "events.document.onkeydown"
	Example string
	Kind    Kind

	// Variable
	Get Getter
	Set Setter

	// Method
	Invoke Invoker
}

// Variable builds a KindVariable property.
func Variable(name, info, example string, get Getter, set Setter) Property {
	return Property{Name: name, Info: info, Example: example, Kind: KindVariable, Get: get, Set: set}
}

// Method builds a KindMethod property.
func Method(name, info, example string, invoke Invoker) Property {
	return Property{Name: name, Info: info, Example: example, Kind: KindMethod, Invoke: invoke}
}

// Object is a virtualized global, e.g. document, window or a canvas context.
type Object struct {
	Name       string
	String     string // string form shown to the program, e.g. "[object document]"
	Properties map[string]Property
}

// NewObject creates an empty Object.
func NewObject(name, str string) *Object {
	return &Object{Name: name, String: str, Properties: make(map[string]Property)}
}

// Add installs or replaces a property.
func (o *Object) Add(p Property) {
	o.Properties[p.Name] = p
}

// Lookup returns the named property.
func (o *Object) Lookup(name string) (Property, bool) {
	p, ok := o.Properties[name]
	return p, ok
}

// Names returns property names in sorted order.
func (o *Object) Names() []string {
	names := make([]string, 0, len(o.Properties))
	for name := range o.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every property of src into o, replacing duplicates.
func (o *Object) Merge(src *Object) {
	for name, p := range src.Properties {
		o.Properties[name] = p
	}
}
