// Package javaquery wraps tree-sitter Java parsing behind the small query
// surface the detectors need. Substring search is not enough for structured
// patterns: the same identifier can appear in a comment or string literal,
// and a false positive routes a file into a generation call that is bound to
// fail validation.
package javaquery

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/spring-migrate/boot3migrate/internal/models"
)

const classExtendsQuery = `
(class_declaration
  (superclass
    (type_identifier) @superclass
  )
) @class
`

const annotationQuery = `
(annotation
  name: (identifier) @name
  arguments: (annotation_argument_list)
) @ann
`

const markerAnnotationQuery = `
(marker_annotation
  name: (identifier) @name
) @ann
`

func parse(src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return parser.ParseCtx(context.Background(), nil, src)
}

func span(node *sitter.Node) models.Span {
	return models.Span{
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
		Line:      node.StartPoint().Row + 1,
	}
}

// runQuery collects, for every match of query, the span of the capture named
// spanCapture, but only when the capture named nameCapture has content equal
// to want. A malformed source yields no matches rather than an error: parse
// failure is evidence the file is out of scope, not a defect.
func runQuery(src []byte, query, nameCapture, want, spanCapture string) []models.Span {
	tree, err := parse(src)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(query), java.GetLanguage())
	if err != nil {
		return nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.RootNode())

	var spans []models.Span
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		var matched bool
		var target *sitter.Node
		for _, capture := range match.Captures {
			switch q.CaptureNameForId(capture.Index) {
			case nameCapture:
				if capture.Node.Content(src) == want {
					matched = true
				}
			case spanCapture:
				target = capture.Node
			}
		}
		if matched && target != nil {
			spans = append(spans, span(target))
		}
	}
	return spans
}

// ClassesExtending returns the spans of class declarations whose superclass
// identifier equals base.
func ClassesExtending(src []byte, base string) []models.Span {
	return runQuery(src, classExtendsQuery, "superclass", base, "class")
}

// Annotations returns the spans of annotations named name. When requireArgs
// is true only annotations carrying an argument list match; otherwise marker
// annotations match as well.
func Annotations(src []byte, name string, requireArgs bool) []models.Span {
	spans := runQuery(src, annotationQuery, "name", name, "ann")
	if !requireArgs {
		spans = append(spans, runQuery(src, markerAnnotationQuery, "name", name, "ann")...)
	}
	return spans
}

// HasSyntaxError reports whether src fails to parse as Java. Used to reject
// model output that is not valid code before it ever reaches validation.
func HasSyntaxError(src []byte) bool {
	tree, err := parse(src)
	if err != nil || tree == nil {
		return true
	}
	defer tree.Close()
	return tree.RootNode().HasError()
}
