// Package luahost runs programs written in Lua against augmented objects.
//
// Each augmented object becomes a global proxy table. Reads and writes of
// Variable properties are trapped by the proxy's metatable and routed to the
// descriptor's Get and Set; Method properties read as functions that call
// Invoke. The call site handed to every descriptor is "chunk:line" of the
// Lua code performing the access.
//
// The sandbox opens only the base, string, table and math libraries and
// removes the base functions that touch the file system. print writes to
// the program's console.
package luahost
