package providers

import (
	"fmt"
	"slices"
	"strings"
)

// Capability is a feature a provider definition advertises.
type Capability string

const (
	CapGenerate Capability = "generate"
	// CapUpload means the provider hosts files, so images are sent by reference.
	CapUpload Capability = "upload"
)

// Definition describes one selectable provider.
type Definition struct {
	Name         string
	Description  string
	Capabilities []Capability
	Builder      Builder
}

// Has reports whether the definition advertises c.
func (d Definition) Has(c Capability) bool {
	return slices.Contains(d.Capabilities, c)
}

// CapabilityList renders the capabilities for display.
func (d Definition) CapabilityList() string {
	names := make([]string, len(d.Capabilities))
	for i, c := range d.Capabilities {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

// verify checks a built provider against what its definition advertises.
func (d Definition) verify(p Provider) error {
	if p.Generator == nil {
		return fmt.Errorf("builder returned no generator")
	}
	if d.Has(CapUpload) != p.CanUpload() {
		return fmt.Errorf("upload capability is %t but provider uploader is %t", d.Has(CapUpload), p.CanUpload())
	}
	return nil
}

func normalizeDefinition(def Definition) (Definition, error) {
	def.Name = strings.ToLower(strings.TrimSpace(def.Name))
	if def.Name == "" {
		return Definition{}, fmt.Errorf("providers: definition name required")
	}
	if def.Builder == nil {
		return Definition{}, fmt.Errorf("providers: %s has no builder", def.Name)
	}
	if !def.Has(CapGenerate) {
		return Definition{}, fmt.Errorf("providers: %s must support %s", def.Name, CapGenerate)
	}
	if def.Description == "" {
		def.Description = def.Name
	}
	def.Capabilities = slices.Clone(def.Capabilities)
	slices.Sort(def.Capabilities)
	return def, nil
}

// registered holds the definitions added by the builder init functions.
var registered = map[string]Definition{}

// RegisterDefinition adds a provider at init time. It panics on an invalid
// or duplicate definition.
func RegisterDefinition(def Definition) {
	def, err := normalizeDefinition(def)
	if err != nil {
		panic(err)
	}
	if _, dup := registered[def.Name]; dup {
		panic(fmt.Sprintf("providers: %s registered twice", def.Name))
	}
	registered[def.Name] = def
}

// DefaultDefinitions returns the registered provider definitions sorted by name.
func DefaultDefinitions() []Definition {
	defs := make([]Definition, 0, len(registered))
	for _, def := range registered {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs
}
