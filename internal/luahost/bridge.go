package luahost

import (
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/leonelquinteros/gotext"

	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/ir"
)

func registryKey(name string) string { return "jsdares.object." + name }

// install creates the global proxy table for obj.
func (p *Program) install(obj *augment.Object) {
	l := p.l
	l.NewTable()

	l.NewTable()
	l.PushGoFunction(p.index(obj))
	l.SetField(-2, "__index")
	l.PushGoFunction(p.newIndex(obj))
	l.SetField(-2, "__newindex")
	str := obj.String
	l.PushGoFunction(func(l *lua.State) int {
		l.PushString(str)
		return 1
	})
	l.SetField(-2, "__tostring")
	l.PushString(obj.Name)
	l.SetField(-2, "__metatable")
	l.SetMetaTable(-2)

	l.PushValue(-1)
	l.SetField(lua.RegistryIndex, registryKey(obj.Name))
	l.SetGlobal(obj.Name)
}

// index handles proxy[key] reads.
func (p *Program) index(obj *augment.Object) lua.Function {
	return func(l *lua.State) int {
		if l.TypeOf(2) != lua.TypeString {
			l.PushNil()
			return 1
		}
		key, _ := l.ToString(2)
		prop, ok := obj.Lookup(key)
		if !ok {
			l.PushNil()
			return 1
		}
		switch prop.Kind {
		case augment.KindVariable:
			p.push(prop.Get(p.site()))
		case augment.KindMethod:
			l.PushGoFunction(p.method(obj, prop))
		default:
			l.PushNil()
		}
		return 1
	}
}

// newIndex handles proxy[key] = value writes. Only Variable properties are
// assignable.
func (p *Program) newIndex(obj *augment.Object) lua.Function {
	return func(l *lua.State) int {
		key, _ := l.ToString(2)
		prop, ok := obj.Lookup(key)
		if !ok || prop.Kind != augment.KindVariable {
			lua.Errorf(l, "%s", gotext.Get("You cannot assign to %s.%s", obj.Name, key))
			return 0
		}
		if err := prop.Set(p.site(), p.toGo(3)); err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
		return 0
	}
}

// method returns the Lua function for a Method property. Both obj.m(...) and
// obj:m(...) are accepted.
func (p *Program) method(obj *augment.Object, prop augment.Property) lua.Function {
	key := registryKey(obj.Name)
	return func(l *lua.State) int {
		first := 1
		if l.Top() >= 1 && l.TypeOf(1) == lua.TypeTable {
			l.Field(lua.RegistryIndex, key)
			if l.RawEqual(1, -1) {
				first = 2
			}
			l.Pop(1)
		}
		site := p.site()
		args := make([]any, 0, l.Top())
		for i := first; i <= l.Top(); i++ {
			args = append(args, p.toGo(i))
		}
		res, err := prop.Invoke(site, args)
		if err != nil {
			lua.Errorf(l, "%s", err.Error())
			return 0
		}
		if res == nil {
			return 0
		}
		p.push(res)
		return 1
	}
}

// site returns "chunk:line" of the Lua function calling the running Go
// function.
func (p *Program) site() augment.Site {
	lua.Where(p.l, 1)
	s, _ := p.l.ToString(-1)
	p.l.Pop(1)
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	if s == "" {
		return augment.Site(p.chunk)
	}
	return augment.Site(s)
}

// toGo converts the Lua value at i to a boundary value.
func (p *Program) toGo(i int) any {
	l := p.l
	switch l.TypeOf(i) {
	case lua.TypeNumber:
		n, _ := l.ToNumber(i)
		return n
	case lua.TypeString:
		s, _ := l.ToString(i)
		return s
	case lua.TypeBoolean:
		return l.ToBoolean(i)
	case lua.TypeFunction:
		return p.funcRef(i)
	default:
		return nil
	}
}

// funcRef names the function at i by the global it is declared as. Builtins
// and functions not stored in a global get an empty name. When several
// globals hold the same function the smallest name wins.
func (p *Program) funcRef(i int) augment.Func {
	l := p.l
	if l.IsGoFunction(i) {
		return augment.Func{}
	}
	i = l.AbsIndex(i)
	var names []string
	l.PushGlobalTable()
	l.PushNil()
	for l.Next(-2) {
		if l.TypeOf(-2) == lua.TypeString && l.RawEqual(-1, i) {
			name, _ := l.ToString(-2)
			names = append(names, name)
		}
		l.Pop(1)
	}
	l.Pop(1)
	if len(names) == 0 {
		return augment.Func{}
	}
	sort.Strings(names)
	return augment.Func{Name: names[0]}
}

// push pushes a boundary value.
func (p *Program) push(v any) {
	l := p.l
	switch x := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(x)
	case float64:
		l.PushNumber(x)
	case int:
		l.PushInteger(x)
	case int64:
		l.PushNumber(float64(x))
	case string:
		l.PushString(x)
	case augment.Func:
		if !x.Declared() {
			l.PushNil()
			return
		}
		l.Global(x.Name)
	case ir.Value:
		p.pushValue(x)
	default:
		l.PushNil()
	}
}

// pushValue pushes an ir value; arrays and objects become tables.
func (p *Program) pushValue(v ir.Value) {
	l := p.l
	switch x := v.(type) {
	case ir.String:
		l.PushString(string(x))
	case ir.Int:
		l.PushNumber(float64(x))
	case ir.Bool:
		l.PushBoolean(bool(x))
	case ir.Array:
		l.CreateTable(len(x), 0)
		for i, e := range x {
			p.pushValue(e)
			l.RawSetInt(-2, i+1)
		}
	case ir.Object:
		l.CreateTable(0, len(x))
		for _, k := range x.SortedKeys() {
			p.pushValue(x[k])
			l.SetField(-2, k)
		}
	default:
		l.PushNil()
	}
}
