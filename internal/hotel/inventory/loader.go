package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// yamlLayoutFile is the top-level YAML structure for layout files.
type yamlLayoutFile struct {
	Layout yamlLayout `yaml:"layout"`
}

// yamlLayout is the YAML representation of a hotel layout.
type yamlLayout struct {
	Name   string      `yaml:"name"`
	Floors []yamlFloor `yaml:"floors"`
}

// yamlFloor is the YAML representation of a single floor.
type yamlFloor struct {
	Floor int `yaml:"floor"`
	Rooms int `yaml:"rooms"`
}

// LoadLayoutFromFile reads and validates a layout YAML file.
//
// Precondition: path must point to a YAML layout file.
// Postcondition: Returns a validated Layout or a non-nil error.
func LoadLayoutFromFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout file %s: %w", path, err)
	}
	return LoadLayoutFromBytes(data)
}

// LoadLayoutFromBytes parses and validates a layout from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the layout schema.
// Floors may appear in any order but must number 1..N with no gaps.
// Postcondition: Returns a validated Layout or a non-nil error.
func LoadLayoutFromBytes(data []byte) (Layout, error) {
	var file yamlLayoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Layout{}, fmt.Errorf("parsing layout YAML: %w", err)
	}

	layout, err := convertYAMLLayout(file.Layout)
	if err != nil {
		return Layout{}, err
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("validating layout: %w", err)
	}
	return layout, nil
}

// convertYAMLLayout converts the parsed YAML structures into a Layout.
func convertYAMLLayout(yl yamlLayout) (Layout, error) {
	floors := make([]yamlFloor, len(yl.Floors))
	copy(floors, yl.Floors)
	sort.Slice(floors, func(i, j int) bool { return floors[i].Floor < floors[j].Floor })

	counts := make([]int, 0, len(floors))
	for i, f := range floors {
		if f.Floor != i+1 {
			return Layout{}, fmt.Errorf("layout floors must be numbered 1..%d without gaps or duplicates, found floor %d at rank %d",
				len(floors), f.Floor, i+1)
		}
		counts = append(counts, f.Rooms)
	}

	return Layout{Name: yl.Name, RoomsPerFloor: counts}, nil
}
