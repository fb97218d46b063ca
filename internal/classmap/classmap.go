package classmap

import "sort"

// Mapper translates raw dataset tokens into canonical classes and classifies
// those classes.
type Mapper interface {
	// Map returns the canonical classes for a raw token in sorted order. An
	// unmapped token yields an empty slice.
	Map(token string) []string
	// IsPositive reports whether the class represents the condition of
	// interest. Binary segmentation replaces non-positive classes with a
	// black mask.
	IsPositive(class string) bool
	// IsHealthy reports whether an empty mask is the correct annotation of
	// the class.
	IsHealthy(class string) bool
}

// Identity maps every token onto itself. Every class is positive and none is
// healthy.
type Identity struct{}

// NewIdentity returns the identity mapper.
func NewIdentity() Identity { return Identity{} }

func (Identity) Map(token string) []string {
	if token == "" {
		return nil
	}
	return []string{token}
}

func (Identity) IsPositive(string) bool { return true }

func (Identity) IsHealthy(string) bool { return false }

// Dict is a dictionary-backed mapper usually loaded from a YAML file.
type Dict struct {
	mappings map[string][]string
	healthy  map[string]struct{}
	positive map[string]struct{}
	// explicitPositive is false when the file did not list positive classes,
	// in which case every non-healthy class counts as positive.
	explicitPositive bool
}

// NewDict builds a dictionary mapper. A nil positive list means every class
// that is not healthy is positive.
func NewDict(mappings map[string][]string, healthy, positive []string) *Dict {
	d := &Dict{
		mappings:         make(map[string][]string, len(mappings)),
		healthy:          toSet(healthy),
		positive:         toSet(positive),
		explicitPositive: positive != nil,
	}
	for token, classes := range mappings {
		d.mappings[token] = uniqueSorted(classes)
	}
	return d
}

func (d *Dict) Map(token string) []string {
	classes, ok := d.mappings[token]
	if !ok || len(classes) == 0 {
		return nil
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return out
}

func (d *Dict) IsPositive(class string) bool {
	if d.explicitPositive {
		_, ok := d.positive[class]
		return ok
	}
	return !d.IsHealthy(class)
}

func (d *Dict) IsHealthy(class string) bool {
	_, ok := d.healthy[class]
	return ok
}

// Tokens returns the mapped raw tokens in sorted order.
func (d *Dict) Tokens() []string {
	tokens := make([]string, 0, len(d.mappings))
	for token := range d.mappings {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Classes returns every canonical class reachable from a token, sorted.
func (d *Dict) Classes() []string {
	var all []string
	for _, classes := range d.mappings {
		all = append(all, classes...)
	}
	return uniqueSorted(all)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
