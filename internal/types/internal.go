package types

import "strings"

// Internal-state categories (block signals, persistent work area, continuous
// states). They never surface in a generated binding.
var (
	internalTypePrefixes  = []string{"B_", "DW_", "X_"}
	internalFieldSuffixes = []string{"_B", "_DW", "_X"}
)

// IsInternalType reports whether a type name belongs to an internal-state category.
func IsInternalType(name string) bool {
	for _, p := range internalTypePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsInternalField reports whether a class field holds internal state.
func IsInternalField(identifier string) bool {
	for _, s := range internalFieldSuffixes {
		if strings.HasSuffix(identifier, s) {
			return true
		}
	}
	return false
}
