package shader

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy2d/engine/model"
)

var (
	// ErrEntryPoint is returned when a source lacks the vertex or fragment entry point the backend calls.
	ErrEntryPoint = errors.New("shader: missing entry point")
	// ErrVertexInput is returned when a vertex input cannot be fed from float vertex data.
	ErrVertexInput = errors.New("shader: unsupported vertex input")
	// ErrLayoutMismatch is returned when a batch model does not provide what a shader reads.
	ErrLayoutMismatch = errors.New("shader: batch model does not match vertex inputs")
)

// wgslInputComponents maps WGSL float types to their component count. Batch vertex data is
// always 32-bit float, so these are the only vertex input types a batch can feed.
var wgslInputComponents = map[string]int{
	"f32":       1,
	"vec2f":     2,
	"vec2<f32>": 2,
	"vec3f":     3,
	"vec3<f32>": 3,
	"vec4f":     4,
	"vec4<f32>": 4,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// Reflection is what the batching pipeline needs to know about a compiled shader.
type Reflection struct {
	// VertexEntry and FragmentEntry are the entry point names.
	VertexEntry   string
	FragmentEntry string
	// Inputs maps each vertex input location to its float component count.
	Inputs map[int]int
}

// Reflect extracts the entry points and vertex inputs from pre-processed WGSL source.
// The vertex input struct is the one with @location fields and no @builtin field.
//
// Parameters:
//   - source: WGSL source with directives already expanded
//
// Returns:
//   - Reflection: the entry points and input locations
//   - error: ErrEntryPoint if vs_main or fs_main is missing, ErrVertexInput for a non-float input
func Reflect(source string) (Reflection, error) {
	cleaned := stripComments(source)
	r := Reflection{
		VertexEntry:   firstMatch(vertexEntryRegex, cleaned),
		FragmentEntry: firstMatch(fragmentEntryRegex, cleaned),
		Inputs:        make(map[int]int),
	}
	if r.VertexEntry != VertexEntryPoint || r.FragmentEntry != FragmentEntryPoint {
		return Reflection{}, fmt.Errorf("%w: want @vertex %s and @fragment %s, found %q and %q",
			ErrEntryPoint, VertexEntryPoint, FragmentEntryPoint, r.VertexEntry, r.FragmentEntry)
	}

	for _, ps := range parseStructBlocks(cleaned) {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			n, ok := wgslInputComponents[f.typeName]
			if !ok {
				return Reflection{}, fmt.Errorf("%w: %s.%s has type %s", ErrVertexInput, ps.name, f.name, f.typeName)
			}
			r.Inputs[f.location] = n
		}
	}
	return r, nil
}

// Accepts reports whether m feeds every vertex input with the right number of components.
// Model slots the shader does not read are allowed.
//
// Parameters:
//   - m: the batch model
//
// Returns:
//   - error: an error wrapping ErrLayoutMismatch, or nil
func (r Reflection) Accepts(m model.BatchModel) error {
	for _, loc := range slices.Sorted(maps.Keys(r.Inputs)) {
		want := r.Inputs[loc]
		if !m.Has(loc) {
			return fmt.Errorf("%w: location %d is not an active slot", ErrLayoutMismatch, loc)
		}
		if got := m.Components(loc); got != want {
			return fmt.Errorf("%w: location %d has %d components, shader reads %d", ErrLayoutMismatch, loc, got, want)
		}
	}
	return nil
}

func firstMatch(re *regexp.Regexp, source string) string {
	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into fields with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}

// isVertexInputStruct returns true if the struct has at least one @location field and no @builtin
// field. Vertex outputs mix @location with @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// stripComments removes block comments (which nest in WGSL) and then line comments.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits at commas not nested inside angle brackets, so array<T, N> stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
