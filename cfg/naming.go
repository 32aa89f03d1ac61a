package cfg

import "fmt"

// Prototype is the display signature of a function: its name and its
// parameter and result types rendered as space-separated text.
type Prototype struct {
	Name    string
	Params  string
	Results string
}

// Namer produces human-readable names for blocks and functions.
type Namer interface {
	BlockName(funcIdx, offset uint32) string
	FuncName(p Prototype) string
}

// DefaultNamer names blocks block_<func>_<offset> in hex and functions
// "<results> <name>(<params>)".
type DefaultNamer struct{}

func (DefaultNamer) BlockName(funcIdx, offset uint32) string {
	return fmt.Sprintf("block_%x_%x", funcIdx, offset)
}

func (DefaultNamer) FuncName(p Prototype) string {
	return FormatFuncName(p.Name, p.Params, p.Results)
}

// FormatFuncName renders a function signature. The result list is omitted
// when the function returns nothing.
func FormatFuncName(name, params, results string) string {
	if results == "" {
		return name + "(" + params + ")"
	}
	return results + " " + name + "(" + params + ")"
}

// fallbackPrototype names a function that has no prototype entry.
func fallbackPrototype(globalIdx uint32) Prototype {
	return Prototype{Name: fmt.Sprintf("$func%d", globalIdx)}
}
