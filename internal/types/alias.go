package types

import (
	"maps"
	"strings"
)

// wrapperPrefixes name single-element wrapper types, longest first.
var wrapperPrefixes = []string{"matrix1x1x", "matrix1x"}

// DefaultAliases maps native type names onto the names used in generated
// declarations.
func DefaultAliases() map[string]string {
	return map[string]string{
		"":        "void*",
		"boolean": "stdint.uint8_t",
		"logical": "stdint.uint8_t",
		"uint8":   "stdint.uint8_t",
		"int8":    "stdint.int8_t",
		"int16":   "stdint.int16_t",
		"uint16":  "stdint.uint16_t",
		"int32":   "stdint.int32_t",
		"uint32":  "stdint.uint32_t",
		"single":  "float",
	}
}

// MergeAliases overlays extra on the defaults.
func MergeAliases(extra map[string]string) map[string]string {
	out := DefaultAliases()
	maps.Copy(out, extra)
	return out
}

func stripWrapperPrefix(name string) string {
	for _, p := range wrapperPrefixes {
		if strings.HasPrefix(name, p) {
			return name[len(p):]
		}
	}
	return name
}
