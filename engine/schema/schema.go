package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// -----------------------------------------------------------------------------
// Schema
// -----------------------------------------------------------------------------

// Schema is a JSON Schema document describing one value shape. The same
// compiled schema checks untrusted inputs and produced outputs alike; it has
// no notion of direction.
type Schema map[string]any

func (s *Schema) String() string {
	bytes, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(bytes)
}

func (s *Schema) Compile() (*Compiled, error) {
	if s == nil || *s == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Compiled{schema: compiled}, nil
}

// -----------------------------------------------------------------------------
// Compiled
// -----------------------------------------------------------------------------

// Compiled is a ready-to-run validator. A nil Compiled accepts every value,
// which is the no-schema convention used for operations without declared
// shapes.
type Compiled struct {
	schema *jsonschema.Schema
}

// Issue is one structured validation failure. Path addresses the offending
// location inside the instance: object keys as strings, array indices as
// ints, empty for the root.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	segments := make([]string, len(i.Path))
	for n, seg := range i.Path {
		segments[n] = fmt.Sprintf("%v", seg)
	}
	return fmt.Sprintf("%s: %s", strings.Join(segments, "."), i.Message)
}

// Outcome reports a single validation run: either Accepted carrying the
// accepted value, or Rejected carrying an ordered issue list.
type Outcome struct {
	Valid  bool
	Value  any
	Issues []Issue
}

// Validate checks raw against the schema. Revalidating a previously accepted
// value of the same schema always succeeds; the library does not mutate the
// instance.
func (c *Compiled) Validate(raw any) *Outcome {
	if c == nil || c.schema == nil {
		return &Outcome{Valid: true, Value: raw}
	}
	result := c.schema.Validate(raw)
	if result.Valid {
		return &Outcome{Valid: true, Value: raw}
	}
	return &Outcome{Issues: issuesFromResult(result)}
}

// issuesFromResult flattens the evaluation output into an ordered issue
// list. Failing branches of unions are reported independently, one issue per
// failed keyword, ordered by instance location and then keyword.
func issuesFromResult(result *jsonschema.EvaluationResult) []Issue {
	list := result.ToList(false)
	if list == nil {
		return nil
	}
	var issues []Issue
	collectIssues(list, &issues)
	return issues
}

func collectIssues(node *jsonschema.List, issues *[]Issue) {
	if node == nil {
		return
	}
	if !node.Valid && len(node.Errors) > 0 {
		keywords := make([]string, 0, len(node.Errors))
		for keyword := range node.Errors {
			keywords = append(keywords, keyword)
		}
		sort.Strings(keywords)
		path := pointerSegments(node.InstanceLocation)
		for _, keyword := range keywords {
			*issues = append(*issues, Issue{Path: path, Message: node.Errors[keyword]})
		}
	}
	for i := range node.Details {
		collectIssues(&node.Details[i], issues)
	}
}

// pointerSegments splits a JSON Pointer into typed path segments.
func pointerSegments(pointer string) []any {
	if pointer == "" || pointer == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	segments := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if index, err := strconv.Atoi(part); err == nil {
			segments = append(segments, index)
			continue
		}
		segments = append(segments, part)
	}
	return segments
}
