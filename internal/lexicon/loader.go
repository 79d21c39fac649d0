package lexicon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// groupFile is the on-disk format for extra homophone groups:
//
//	groups:
//	  - [whole, hole]
//	  - [plain, plane]
type groupFile struct {
	Groups [][]string `yaml:"groups"`
}

// LoadGroups reads extra homophone groups from a YAML file
func LoadGroups(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	groups, err := LoadGroupsFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parse %q: %w", path, err)
	}
	return groups, nil
}

// LoadGroupsFromReader decodes groups from r, rejecting unknown fields and
// groups with fewer than two members
func LoadGroupsFromReader(r io.Reader) ([][]string, error) {
	var gf groupFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&gf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	for i, g := range gf.Groups {
		if len(g) < 2 {
			return nil, fmt.Errorf("group %d: need at least 2 words, got %d", i, len(g))
		}
	}
	return gf.Groups, nil
}
