package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"spbg/internal/diag"
)

// Registry canonicalizes native type descriptors into records. Records are
// stored in an append-only table in registration order (children before the
// structs that contain them) and looked up by canonical name. Scopes live
// beside the table and are assigned at most once.
type Registry struct {
	records []Record
	index   map[string]RecordID
	scopes  map[RecordID]string
	aliases map[string]string
	sealed  bool
	// OnRegister, when set, observes every newly appended record.
	OnRegister func(Record)
}

// NewRegistry constructs a registry using DefaultAliases.
func NewRegistry() *Registry {
	return NewRegistryWithAliases(DefaultAliases())
}

// NewRegistryWithAliases constructs a registry with a custom alias table.
func NewRegistryWithAliases(aliases map[string]string) *Registry {
	return &Registry{
		index:   make(map[string]RecordID, 32),
		scopes:  make(map[RecordID]string),
		aliases: aliases,
	}
}

// Canonical maps a raw native name onto its canonical spelling.
func (r *Registry) Canonical(name string) string {
	name = norm.NFC.String(name)
	if alias, ok := r.aliases[name]; ok {
		return alias
	}
	return name
}

// Register records d (and, depth-first, every type it references) and returns
// its canonical name. Registering an equivalent descriptor again returns the
// same name without growing the table.
func (r *Registry) Register(d *Descriptor) (string, error) {
	if r.sealed {
		return "", diag.Errorf(diag.TypeRegistrySealed, "cannot register %q after scope resolution", descName(d))
	}
	if d == nil {
		return "", diag.Errorf(diag.TypeMissingDescriptor, "missing type descriptor")
	}
	rawName, d := unwrap(d)
	name := r.Canonical(rawName)
	if _, ok := r.index[name]; ok {
		return name, nil
	}

	var rec Record
	switch {
	case d.Elements != nil:
		elems := make([]Element, 0, len(*d.Elements))
		for _, el := range *d.Elements {
			if el.Type == nil {
				return "", diag.Errorf(diag.TypeMissingDescriptor, "element %q of %q has no type", el.Identifier, name)
			}
			elType, err := r.Register(el.Type)
			if err != nil {
				return "", err
			}
			elems = append(elems, Element{Name: norm.NFC.String(el.Identifier), Type: elType})
		}
		rec = Record{Name: name, Mode: ModeStruct, Elements: elems}
	case d.Dimensions != nil:
		size, err := elementCount(name, *d.Dimensions)
		if err != nil {
			return "", err
		}
		if d.BaseType == nil {
			return "", diag.Errorf(diag.TypeMissingDescriptor, "array %q has no base type", name)
		}
		base, err := r.Register(d.BaseType)
		if err != nil {
			return "", err
		}
		rec = Record{Name: name, Mode: ModeArray, Base: base, Size: size}
	default:
		rec = Record{Name: name, Mode: ModeScalar}
	}

	// a nested registration may already have produced this name
	if _, ok := r.index[name]; ok {
		return name, nil
	}
	r.append(rec)
	return name, nil
}

func (r *Registry) append(rec Record) {
	n, err := safecast.Conv[uint32](len(r.records))
	if err != nil {
		panic(fmt.Errorf("len(records) overflow: %w", err))
	}
	r.records = append(r.records, rec)
	r.index[rec.Name] = RecordID(n)
	if r.OnRegister != nil {
		r.OnRegister(rec)
	}
}

// unwrap descends through single-element wrappers (total extent 1) to the
// innermost base type. A wrapper without a base type becomes a scalar named
// after the wrapper with its prefix stripped.
func unwrap(d *Descriptor) (string, *Descriptor) {
	for d.Dimensions != nil && d.Dimensions.Product() == 1 {
		if d.BaseType == nil {
			name := stripWrapperPrefix(d.Name)
			return name, &Descriptor{Name: name}
		}
		d = d.BaseType
	}
	return d.Name, d
}

// elementCount returns the single non-unit extent of dims.
func elementCount(name string, dims Dimensions) (uint32, error) {
	var nonUnit []int64
	for _, v := range dims {
		if v != 1 {
			nonUnit = append(nonUnit, v)
		}
	}
	if len(nonUnit) > 1 {
		return 0, diag.Errorf(diag.TypeMultiDimArray, "type %q has dimensions %v", name, []int64(dims))
	}
	if len(nonUnit) == 0 || nonUnit[0] < 1 {
		return 0, diag.Errorf(diag.TypeInvalidDimension, "type %q has dimensions %v", name, []int64(dims))
	}
	size, err := safecast.Conv[uint32](nonUnit[0])
	if err != nil {
		return 0, diag.Errorf(diag.TypeInvalidDimension, "type %q: %v", name, err)
	}
	return size, nil
}

func descName(d *Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}

// Lookup returns the record for a canonical name.
func (r *Registry) Lookup(name string) (Record, bool) {
	id, ok := r.index[name]
	if !ok {
		return Record{}, false
	}
	return r.record(id), true
}

// MustLookup returns the record for name or a TypeUnknown error.
func (r *Registry) MustLookup(name string) (Record, error) {
	rec, ok := r.Lookup(name)
	if !ok {
		return Record{}, diag.Errorf(diag.TypeUnknown, "type %q is not registered", name)
	}
	return rec, nil
}

func (r *Registry) record(id RecordID) Record {
	rec := r.records[id]
	rec.Elements = slices.Clone(rec.Elements)
	rec.Scope = r.scopes[id]
	return rec
}

// Records returns every record in registration order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	for i := range r.records {
		out[i] = r.record(RecordID(i))
	}
	return out
}

// Len reports the number of canonical types.
func (r *Registry) Len() int {
	return len(r.records)
}

// SetScope attaches an owning class to a registered type. A scope is assigned
// once; repeating the same owner is a no-op, a different owner is an error.
func (r *Registry) SetScope(name, owner string) error {
	if r.sealed {
		return diag.Errorf(diag.TypeRegistrySealed, "cannot scope %q after sealing", name)
	}
	id, ok := r.index[name]
	if !ok {
		return diag.Errorf(diag.TypeUnknown, "type %q is not registered", name)
	}
	switch prev := r.scopes[id]; prev {
	case "":
		r.scopes[id] = owner
		return nil
	case owner:
		return nil
	default:
		return diag.Errorf(diag.ScopeConflict, "type %q already scoped to %q, got %q", name, prev, owner)
	}
}

// Seal freezes the registry; later Register and SetScope calls fail.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	return r.sealed
}
