package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks a pre-processor directive inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies a pre-processor directive.
type AnnotationType string

const (
	// AnnotationTypeInclude injects an engine-provided WGSL struct: "// @oxy:include projection".
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeTextures expands to one sampler and texture binding per texture slot, plus the
	// sample_slot(index, uv) helper that selects among them: "// @oxy:textures".
	AnnotationTypeTextures AnnotationType = "textures"
)

// Annotation is a parsed directive.
type Annotation struct {
	Type AnnotationType
	Args []string
	Line int
}

// parseAnnotation returns nil, nil for lines without a directive.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include requires exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeTextures:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy:textures takes no arguments", lineNum)
		}
		return &Annotation{Type: AnnotationTypeTextures, Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
