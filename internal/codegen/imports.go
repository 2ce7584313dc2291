package codegen

import (
	"sort"
	"strings"
)

// ImportCollector accumulates the Python imports a generation run needs and
// renders them as one deterministic header. Adding the same import twice is a
// no-op. A collector belongs to exactly one generation run.
type ImportCollector struct {
	from map[string]map[string]bool
	bare map[string]bool
}

// NewImportCollector creates an empty import collector
func NewImportCollector() *ImportCollector {
	return &ImportCollector{
		from: make(map[string]map[string]bool),
		bare: make(map[string]bool),
	}
}

// Add records a `from module import name` requirement.
func (c *ImportCollector) Add(module, name string) {
	names, ok := c.from[module]
	if !ok {
		names = make(map[string]bool)
		c.from[module] = names
	}
	names[name] = true
}

// AddBare records an `import module` requirement.
func (c *ImportCollector) AddBare(module string) {
	c.bare[module] = true
}

// Render produces the import header. Order: typing imports, bare imports,
// a blank line, then sqlalchemy, sqlalchemy.dialects.*, and sqlalchemy.orm
// imports. Modules and names within a line are sorted bytewise.
func (c *ImportCollector) Render() string {
	var typing, core, dialects, orm []string

	modules := make([]string, 0, len(c.from))
	for module := range c.from {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	for _, module := range modules {
		line := "from " + module + " import " + strings.Join(sortedKeys(c.from[module]), ", ")
		switch {
		case module == "typing":
			typing = append(typing, line)
		case module == "sqlalchemy":
			core = append(core, line)
		case strings.HasPrefix(module, "sqlalchemy.dialects"):
			dialects = append(dialects, line)
		case strings.HasPrefix(module, "sqlalchemy.orm"):
			orm = append(orm, line)
		}
	}

	lines := append([]string{}, typing...)
	for _, module := range sortedKeys(c.bare) {
		lines = append(lines, "import "+module)
	}
	if len(lines) > 0 && len(core)+len(dialects)+len(orm) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, core...)
	lines = append(lines, dialects...)
	lines = append(lines, orm...)

	return strings.Join(lines, "\n")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
