package runner

import (
	"regexp"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

// ImportPattern extracts the module/package paths a file imports or
// requires, language-dependent (spec.md §4.6: "import/require text
// patterns"). The Architect uses these edges to build a file-level
// dependency graph, not an AST — this stays a text scan deliberately,
// matching the teacher's own preference for regex-driven log/text
// parsing over bringing in a per-language parser for a concern this
// narrow.
type ImportPattern struct {
	Name  string
	Regex *regexp.Regexp
	// Group is the submatch index holding the imported path.
	Group int
}

// DefaultImportPatterns covers the import/require forms common to the
// languages this analysis targets.
func DefaultImportPatterns() []ImportPattern {
	return []ImportPattern{
		{Name: "es_import", Regex: regexp.MustCompile(`(?m)^\s*import\s+.*?from\s+['"]([^'"]+)['"]`), Group: 1},
		{Name: "cjs_require", Regex: regexp.MustCompile(`(?m)require\(\s*['"]([^'"]+)['"]\s*\)`), Group: 1},
		{Name: "go_import", Regex: regexp.MustCompile(`(?m)^\s*"([^"]+)"\s*$`), Group: 1},
	}
}

// LayerRule says files matching FromPattern must not import paths
// matching ToPattern (spec.md §4.6: "layer violations against a
// supplied layer-pattern table").
type LayerRule struct {
	Name        string
	FromPattern *regexp.Regexp
	ToPattern   *regexp.Regexp
}

// DependencyGraph maps a file path to the set of paths it imports, as
// extracted by a set of ImportPattern.
type DependencyGraph map[string][]string

// BuildDependencyGraph scans each file's content for import/require
// edges using patterns.
func BuildDependencyGraph(files []SourceFile, patterns []ImportPattern) DependencyGraph {
	graph := make(DependencyGraph, len(files))
	for _, f := range files {
		var edges []string
		for _, p := range patterns {
			for _, m := range p.Regex.FindAllStringSubmatch(f.Content, -1) {
				if p.Group < len(m) {
					edges = append(edges, m[p.Group])
				}
			}
		}
		graph[f.Path] = edges
	}
	return graph
}

// DetectCycles finds cycles in graph via iterative DFS with an explicit
// recursion stack (spec.md §4.6), returning one representative cycle
// path per distinct cycle root found. Edges pointing to nodes absent
// from graph (external packages) are ignored.
func DetectCycles(graph DependencyGraph) [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(graph))
	var cycles [][]string

	type frame struct {
		node    string
		edgeIdx int
	}

	for root := range graph {
		if color[root] != white {
			continue
		}
		stack := []frame{{node: root}}
		path := []string{root}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := graph[top.node]
			advanced := false
			for top.edgeIdx < len(edges) {
				next := edges[top.edgeIdx]
				top.edgeIdx++
				if _, known := graph[next]; !known {
					continue
				}
				switch color[next] {
				case white:
					color[next] = gray
					path = append(path, next)
					stack = append(stack, frame{node: next})
					advanced = true
				case gray:
					cycles = append(cycles, cyclePath(path, next))
				case black:
					// already fully explored, no cycle through it
				}
				if advanced {
					break
				}
			}
			if advanced {
				continue
			}
			color[top.node] = black
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}

// cyclePath returns the suffix of path starting at the first occurrence
// of node, representing the cycle itself.
func cyclePath(path []string, node string) []string {
	for i, p := range path {
		if p == node {
			cycle := make([]string, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return []string{node}
}

// DetectLayerViolations reports each (file, import) edge where file
// matches rule.FromPattern and the import matches rule.ToPattern.
func DetectLayerViolations(graph DependencyGraph, rules []LayerRule) []struct {
	File   string
	Import string
	Rule   string
} {
	var violations []struct {
		File   string
		Import string
		Rule   string
	}
	for file, imports := range graph {
		for _, rule := range rules {
			if !rule.FromPattern.MatchString(file) {
				continue
			}
			for _, imp := range imports {
				if rule.ToPattern.MatchString(imp) {
					violations = append(violations, struct {
						File   string
						Import string
						Rule   string
					}{File: file, Import: imp, Rule: rule.Name})
				}
			}
		}
	}
	return violations
}

// StructuralFindings runs cycle and layer-violation detection over
// files and returns the findings they yield, at the fixed confidences
// spec.md §4.6 assigns (0.95 for circular_dependency, 0.8 for
// layer_violation), emitted alongside whatever the LLM reports.
func StructuralFindings(files []SourceFile, importPatterns []ImportPattern, layerRules []LayerRule) []models.Finding {
	graph := BuildDependencyGraph(files, importPatterns)

	var findings []models.Finding
	for _, cycle := range DetectCycles(graph) {
		findings = append(findings, cycleFinding(cycle))
	}
	for _, v := range DetectLayerViolations(graph, layerRules) {
		findings = append(findings, layerViolationFinding(v.File, v.Import, v.Rule))
	}
	return findings
}

func cycleFinding(cycle []string) models.Finding {
	title := "Circular dependency: " + joinCycle(cycle)
	f := models.Finding{
		ID:          identity.Prefixed("fnd"),
		DebtType:    models.DebtCircularDependency,
		Severity:    models.SeverityHigh,
		Confidence:  0.95,
		Title:       title,
		Description: "Import cycle detected: " + joinCycle(cycle),
		FilePath:    cycle[0],
		Evidence:    append([]string(nil), cycle...),
	}
	f.Fingerprint = identity.Fingerprint(string(f.DebtType), f.FilePath, f.Title)
	return f
}

func layerViolationFinding(file, imp, rule string) models.Finding {
	f := models.Finding{
		ID:          identity.Prefixed("fnd"),
		DebtType:    models.DebtLayerViolation,
		Severity:    models.SeverityMedium,
		Confidence:  0.8,
		Title:       "Layer violation: " + file + " -> " + imp,
		Description: "File violates layering rule " + rule + " by importing " + imp,
		FilePath:    file,
		Evidence:    []string{imp},
	}
	f.Fingerprint = identity.Fingerprint(string(f.DebtType), f.FilePath, f.Title)
	return f
}

func joinCycle(cycle []string) string {
	out := ""
	for i, c := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += c
	}
	if len(cycle) > 0 {
		out += " -> " + cycle[0]
	}
	return out
}
