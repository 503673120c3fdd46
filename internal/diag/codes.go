package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// context directory and configuration
	CtxNotDirectory    Code = 1001
	CtxMissingFile     Code = 1002
	CtxInvalidConfig   Code = 1003
	CtxOutputNotUsable Code = 1004

	// metadata
	MetMalformed      Code = 2001
	MetMissingSection Code = 2002
	MetMissingMethod  Code = 2003

	// type registry
	TypeMultiDimArray     Code = 3001
	TypeInvalidDimension  Code = 3002
	TypeMissingDescriptor Code = 3003
	TypeUnknown           Code = 3004
	TypeRegistrySealed    Code = 3005

	// scope resolution
	ScopeMalformed Code = 4001
	ScopeConflict  Code = 4002

	// emission
	GenPendingScope    Code = 5001
	GenUnsupportedType Code = 5002
	GenNotStruct       Code = 5003

	// source patching
	PatchMissingMarker Code = 6001

	// file IO
	IOReadFailed  Code = 7001
	IOWriteFailed Code = 7002
	IOCopyFailed  Code = 7003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	CtxNotDirectory:    "Context path is not a directory",
	CtxMissingFile:     "Required file missing from context directory",
	CtxInvalidConfig:   "Invalid configuration",
	CtxOutputNotUsable: "Output directory cannot be used",

	MetMalformed:      "Malformed model metadata",
	MetMissingSection: "Metadata section missing",
	MetMissingMethod:  "Class method missing",

	TypeMultiDimArray:     "Multi-dimensional arrays are not supported",
	TypeInvalidDimension:  "Invalid array dimension",
	TypeMissingDescriptor: "Type descriptor missing",
	TypeUnknown:           "Unknown type",
	TypeRegistrySealed:    "Type registry is sealed",

	ScopeMalformed: "Malformed qualified scope identifier",
	ScopeConflict:  "Conflicting scope for type",

	GenPendingScope:    "Pending scoped type not consumed",
	GenUnsupportedType: "Unsupported type in conversion",
	GenNotStruct:       "Struct type expected",

	PatchMissingMarker: "Malformed header: access marker not found",

	IOReadFailed:  "Failed to read file",
	IOWriteFailed: "Failed to write file",
	IOCopyFailed:  "Failed to copy file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CTX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MET%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SCP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PAT%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
