package overlay

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Region holds the table offsets of one regional release.
type Region struct {
	FileAddressTable uint32 `yaml:"file_address_table"`
	FileSegmentTable uint32 `yaml:"file_segment_table"`
}

// FileRange is an inclusive range of 1-based file numbers.
type FileRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

func (r FileRange) Contains(n int) bool {
	return n >= r.First && n <= r.Last
}

// Profile holds the per-title constants needed to split a ROM.
type Profile struct {
	Name string `yaml:"name"`

	// Files holding code, the rest are assets.
	CodeFiles FileRange `yaml:"code_files"`

	// Load addresses of code files sharing the same memory.
	StaticOverlay1 []uint32 `yaml:"static_overlay_1"`
	StaticOverlay2 []uint32 `yaml:"static_overlay_2"`

	// Load address of code files mapped via TLB.
	TLBOverlay uint32 `yaml:"tlb_overlay"`

	Regions map[string]Region `yaml:"regions"`
}

// DefaultProfile covers the Japanese and USA releases.
var DefaultProfile = Profile{
	Name:           "nisitenma-ichigo",
	CodeFiles:      FileRange{11, 80},
	StaticOverlay1: []uint32{0x801d0b90, 0x801cb460},
	StaticOverlay2: []uint32{0x80212090, 0x8020d2a0},
	TLBOverlay:     0x0800_0000,
	Regions: map[string]Region{
		"jp": {FileAddressTable: 0x58258, FileSegmentTable: 0x5594c},
		"us": {FileAddressTable: 0x57fd8, FileSegmentTable: 0x556cc},
	},
}

// Exclusive RAM ids grouping files loaded to the same memory.
const (
	StaticOverlay1 = "static_overlay_1"
	StaticOverlay2 = "static_overlay_2"
	TLBOverlay     = "tlb_overlay"
)

// IsCode reports whether the file with the 1-based number n holds code.
func (p *Profile) IsCode(n int) bool {
	return p.CodeFiles.Contains(n)
}

// Classify returns the exclusive RAM id of a file. Files without overlapping
// memory get an empty id.
func (p *Profile) Classify(isCode bool, vram uint32) string {
	switch {
	case isCode && slices.Contains(p.StaticOverlay1, vram):
		return StaticOverlay1
	case slices.Contains(p.StaticOverlay2, vram):
		return StaticOverlay2
	case vram == p.TLBOverlay:
		return TLBOverlay
	case !isCode:
		return fmt.Sprintf("asset_%d", vram>>24)
	}
	return ""
}

// Region returns the table offsets of the named region.
func (p *Profile) Region(name string) (Region, error) {
	r, ok := p.Regions[name]
	if !ok {
		return Region{}, fmt.Errorf("profile %s: unknown region %q", p.Name, name)
	}
	return r, nil
}

// LoadProfile reads a YAML profile from path. Keys missing in the file keep
// the values of DefaultProfile.
func LoadProfile(fsys afero.Fs, path string) (*Profile, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	p := DefaultProfile
	p.Regions = nil
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	if p.Regions == nil {
		p.Regions = DefaultProfile.Regions
	}
	return &p, nil
}
