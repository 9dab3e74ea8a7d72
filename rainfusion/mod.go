// Package rainfusion defines the mod catalogue records of the Rainfusion site.
package rainfusion

import (
	"fmt"
	"strings"

	"github.com/andreyvit/glass"
)

var (
	Schema   = &glass.Schema{}
	ModsType = glass.AddType[Mod](Schema, "mods")
)

// Mod is one catalogue entry: a mod or a library other mods depend on.
type Mod struct {
	Name         *string      `json:"name,omitempty"`
	Author       *string      `json:"author,omitempty"`
	ImgURL       *string      `json:"img_url,omitempty"`
	Summary      *string      `json:"summary,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Version      *string      `json:"version,omitempty"`
	ItemType     ModType      `json:"item_type"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

// Mods returns the typed collection of mods in s.
func Mods(s *glass.Store) *glass.Collection[Mod] {
	return glass.NewCollection(s, ModsType)
}

type ModType uint8

const (
	ModTypeMod ModType = iota
	ModTypeLib
)

var modTypeTokens = [...]string{
	ModTypeMod: "mod",
	ModTypeLib: "lib",
}

// ParseModType maps "mod" and "lib" to their ModType. Anything else,
// including the empty string, is ModTypeMod.
func ParseModType(s string) ModType {
	switch s {
	case "lib":
		return ModTypeLib
	default:
		return ModTypeMod
	}
}

func (t ModType) String() string {
	if int(t) < len(modTypeTokens) {
		return modTypeTokens[t]
	}
	return fmt.Sprintf("ModType(%d)", uint8(t))
}

func (t ModType) MarshalText() ([]byte, error) {
	if int(t) >= len(modTypeTokens) {
		return nil, fmt.Errorf("invalid ModType %d", uint8(t))
	}
	return []byte(modTypeTokens[t]), nil
}

func (t *ModType) UnmarshalText(text []byte) error {
	*t = ParseModType(string(text))
	return nil
}

// NA is what Display shows for absent values.
const NA = "N/A"

func OrNA(s *string) string {
	if s == nil || *s == "" {
		return NA
	}
	return *s
}

// Display formats m for people, one "Label: value" line per field.
func (m *Mod) Display() string {
	var buf strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&buf, "%-13s %s\n", label+":", value)
	}
	line("Name", OrNA(m.Name))
	line("Author", OrNA(m.Author))
	line("Image", OrNA(m.ImgURL))
	line("Summary", OrNA(m.Summary))
	line("Description", OrNA(m.Description))
	line("Version", OrNA(m.Version))
	line("Type", m.ItemType.String())
	if len(m.Dependencies) == 0 {
		line("Dependencies", NA)
	} else {
		deps := make([]string, len(m.Dependencies))
		for i, d := range m.Dependencies {
			deps[i] = fmt.Sprintf("%s %s (%v)", d.Name, d.Version, d.ID)
		}
		line("Dependencies", strings.Join(deps, ", "))
	}
	if len(m.Tags) == 0 {
		line("Tags", NA)
	} else {
		line("Tags", strings.Join(m.Tags, ", "))
	}
	return buf.String()
}
