package types

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"spbg/internal/diag"
)

const scopeSeparator = "::"

// ResolveScopes attaches owning classes to registered struct types. It runs
// once every type is registered: for each descriptor whose identifier reads
// Owner::Name the record called Name gets scope Owner. Internal-state types
// are skipped, as are descriptors naming types the binding never reached;
// the names of the latter are returned.
func ResolveScopes(r *Registry, descs []*Descriptor) (skipped []string, err error) {
	for _, d := range descs {
		if d == nil || IsInternalType(d.Name) {
			continue
		}
		id := norm.NFC.String(d.Identifier)
		if !strings.Contains(id, scopeSeparator) {
			continue
		}
		parts := strings.Split(id, scopeSeparator)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return skipped, diag.Errorf(diag.ScopeMalformed, "identifier %q is not of the form Owner::Name", d.Identifier)
		}
		owner, name := parts[0], parts[1]
		if name != norm.NFC.String(d.Name) {
			return skipped, diag.Errorf(diag.ScopeMalformed, "identifier %q does not name type %q", d.Identifier, d.Name)
		}
		canonical := r.Canonical(name)
		if _, ok := r.Lookup(canonical); !ok {
			skipped = append(skipped, canonical)
			continue
		}
		if err := r.SetScope(canonical, owner); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
