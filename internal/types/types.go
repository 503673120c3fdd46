package types

import "fmt"

// RecordID indexes a record inside the registry table.
type RecordID uint32

// Mode enumerates the three shapes a canonical type can take.
type Mode uint8

const (
	ModeScalar Mode = iota + 1
	ModeArray
	ModeStruct
)

func (m Mode) String() string {
	switch m {
	case ModeScalar:
		return "scalar"
	case ModeArray:
		return "array"
	case ModeStruct:
		return "struct"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Sentinel type names used by method signatures.
const (
	// Void is the return type of a method that returns nothing.
	Void = "void"
	// NoArgs is the argument type of a method that takes nothing.
	NoArgs = ""
)

// Element is one named member of a struct record.
type Element struct {
	Name string
	Type string
}

// Record is a canonical type. Only the fields matching Mode are meaningful:
// Elements for structs, Base and Size for arrays.
type Record struct {
	Name     string
	Mode     Mode
	Scope    string
	Elements []Element
	Base     string
	Size     uint32
}

// Scoped reports whether an owning class was attached to the record.
func (r Record) Scoped() bool {
	return r.Scope != ""
}

func (r Record) String() string {
	switch r.Mode {
	case ModeArray:
		return fmt.Sprintf("%s[%d]", r.Base, r.Size)
	case ModeStruct:
		if r.Scope != "" {
			return r.Scope + "::" + r.Name
		}
		return r.Name
	default:
		return r.Name
	}
}
