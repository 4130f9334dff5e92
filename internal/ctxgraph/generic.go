package ctxgraph

import "strings"

// GenericContext is the `{parameters, variants, currently_used_variant}`
// sub-structure spec.md §3 attaches to every generic class or function
// context.
type GenericContext struct {
	Parameters []string

	// Variants maps a variant-id to its parameter->resolved-type map.
	Variants map[string]map[string]string

	CurrentlyUsed string // "" if none selected
}

// NewGenericContext creates a sub-context over the given (ordered) type
// parameter names.
func NewGenericContext(params []string) *GenericContext {
	return &GenericContext{
		Parameters: params,
		Variants:   make(map[string]map[string]string),
	}
}

// VariantID computes the deterministic variant identifier for an ordered
// list of resolved types: "_" + T1 + "_" + T2 + ... (spec.md §4.7/§8). The
// leading underscore is the suffix form used when the id is appended to an
// emitted symbol name; RegisterVariant stores it under this same key so
// lookups by suffix and by id agree.
func VariantID(resolvedTypes []string) string {
	var sb strings.Builder
	for _, t := range resolvedTypes {
		sb.WriteByte('_')
		sb.WriteString(t)
	}
	return sb.String()
}

// RegisterVariant records one concrete substitution of this generic
// context's parameters, keyed by VariantID. Re-registering an
// already-present id is a no-op (monotonic set semantics, spec.md §3/§8).
// types must supply exactly one resolved type per parameter, in parameter
// order; a mismatched key set is rejected (the `is_variant_valid` check in
// spec.md §3).
func (g *GenericContext) RegisterVariant(resolvedTypes []string) bool {
	if len(resolvedTypes) != len(g.Parameters) {
		return false
	}
	id := VariantID(resolvedTypes)
	if _, exists := g.Variants[id]; exists {
		return true
	}

	variant := make(map[string]string, len(g.Parameters))
	for i, param := range g.Parameters {
		variant[param] = resolvedTypes[i]
	}
	g.Variants[id] = variant
	return true
}

// IsVariantValid reports whether variant's key set is exactly this
// context's parameter set (spec.md §3).
func (g *GenericContext) IsVariantValid(variant map[string]string) bool {
	if len(variant) != len(g.Parameters) {
		return false
	}
	for _, p := range g.Parameters {
		if _, ok := variant[p]; !ok {
			return false
		}
	}
	return true
}

// Variant returns the resolved-type map for a variant id, if present.
func (g *GenericContext) Variant(id string) (map[string]string, bool) {
	v, ok := g.Variants[id]
	return v, ok
}

// SortedVariantIDs returns every registered variant id in a stable,
// deterministic order (insertion order is not preserved by a Go map, so
// the emitter needs a defined order to produce reproducible output across
// runs — spec.md §8's "for every generic declaration with variants
// {V1,...,Vk}, the emitter produces k specializations" does not mandate an
// order, but determinism across builds is still required by §5).
func (g *GenericContext) SortedVariantIDs() []string {
	ids := make([]string, 0, len(g.Variants))
	for id := range g.Variants {
		ids = append(ids, id)
	}
	// Simple insertion sort is fine: variant counts are small (one per
	// distinct instantiation actually used in a compilation unit).
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// CurrentTranslation resolves identifier against the currently-selected
// variant, if any (spec.md §4.9's transform_if_generic_type).
func (g *GenericContext) CurrentTranslation(identifier string) (string, bool) {
	if g.CurrentlyUsed == "" {
		return "", false
	}
	variant, ok := g.Variants[g.CurrentlyUsed]
	if !ok {
		return "", false
	}
	resolved, ok := variant[identifier]
	return resolved, ok
}
