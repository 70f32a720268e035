package leafwatch

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the nested set of tracking events the ingest path accepts.
type Catalog struct {
	tree  map[string]any
	names map[string]string // event name -> dotted key path
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the embedded one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Leaves must be strings.
func ParseCatalog(data []byte) (*Catalog, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c := &Catalog{tree: tree, names: make(map[string]string)}
	if err := c.index(tree, nil); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) index(node map[string]any, path []string) error {
	for key, value := range node {
		p := append(append([]string(nil), path...), key)
		switch v := value.(type) {
		case string:
			if v == "" {
				return fmt.Errorf("catalog key %s has an empty event name", strings.Join(p, "."))
			}
			if _, dup := c.names[v]; !dup {
				c.names[v] = strings.Join(p, ".")
			}
		case map[string]any:
			if err := c.index(v, p); err != nil {
				return err
			}
		default:
			return fmt.Errorf("catalog key %s must be a string or a group, got %T", strings.Join(p, "."), value)
		}
	}
	return nil
}

// Has reports whether name is an event anywhere in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Key returns the dotted path of name, e.g. "AUTH.SIGNUP".
func (c *Catalog) Key(name string) (string, bool) {
	k, ok := c.names[name]
	return k, ok
}

// Names returns every event name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Tree returns the decoded catalog as nested maps.
func (c *Catalog) Tree() map[string]any {
	return c.tree
}
