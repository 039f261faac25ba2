// Package parse reads the erDiagram text notation into an [er.Diagram].
//
// The notation is line oriented:
//
//	erDiagram
//	title Order handling
//	CUSTOMER ||--o{ ORDER : places
//	ORDER.customer_id }o..|| CUSTOMER.id : "belongs to"
//	CUSTOMER["Customer Account"] {
//	    int id PK
//	    string name
//	}
//	%% comment lines are ignored
//
// Relationship endpoints use crow's-foot tokens: |o (zero or one),
// || (exactly one), }o (zero or more), }| (one or more), and u (parent side
// of a hierarchical relationship). The connector is -- for identifying and
// .. for non-identifying relationships.
package parse

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/errors"
)

// endpoint matches CUSTOMER or CUSTOMER["Customer Account"], optionally
// narrowed to a single attribute with .attribute.
const endpoint = `([A-Za-z_][A-Za-z0-9_-]*)(?:\["([^"]*)"\])?(?:\.([A-Za-z_][A-Za-z0-9_-]*))?`

var (
	endpointRe = regexp.MustCompile(`^` + endpoint + `$`)

	// entity block header: CUSTOMER { or CUSTOMER["alias"] {
	blockRe = regexp.MustCompile(`^` + endpoint + `\s*\{$`)

	// full relationship line: A <card><connector><card> B [: label]
	relLineRe = regexp.MustCompile(`^` + endpoint +
		`\s+(\|o|\|\||\}o|\}\||u)(--|\.\.)(o\||\|\||o\{|\|\{|u)\s+` + endpoint +
		`(?:\s*:\s*(.+))?$`)
)

// leftCards maps the A-side token (read outward from the connector).
var leftCards = map[string]er.Cardinality{
	"|o": er.ZeroOrOne,
	"||": er.ExactlyOne,
	"}o": er.ZeroOrMore,
	"}|": er.OneOrMore,
	"u":  er.MDParent,
}

// rightCards maps the B-side token (mirrored orientation).
var rightCards = map[string]er.Cardinality{
	"o|": er.ZeroOrOne,
	"||": er.ExactlyOne,
	"o{": er.ZeroOrMore,
	"|{": er.OneOrMore,
	"u":  er.MDParent,
}

// Parse reads the diagram notation and returns the populated model.
// Lines that declare relationships to never-declared entities are accepted;
// the renderer decides how to handle dangling references.
func Parse(text string) (*er.Diagram, error) {
	d := er.NewDiagram()

	scanner := bufio.NewScanner(strings.NewReader(text))
	sawHeader := false
	var block string // entity name while inside an attribute block

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		if !sawHeader {
			if line != "erDiagram" {
				return nil, errors.New(errors.ErrCodeParse,
					"line %d: expected 'erDiagram' header, got %q", lineNo, line)
			}
			sawHeader = true
			continue
		}

		if block != "" {
			if line == "}" {
				block = ""
				continue
			}
			attr, err := parseAttribute(line, lineNo)
			if err != nil {
				return nil, err
			}
			d.AddAttributes(block, []er.Attribute{attr})
			continue
		}

		switch {
		case strings.HasPrefix(line, "title "):
			d.SetTitle(strings.TrimSpace(strings.TrimPrefix(line, "title ")))
		case strings.HasPrefix(line, "accTitle:"):
			d.SetAccTitle(strings.TrimSpace(strings.TrimPrefix(line, "accTitle:")))
		case strings.HasPrefix(line, "accDescr:"):
			d.SetAccDescr(strings.TrimSpace(strings.TrimPrefix(line, "accDescr:")))
		default:
			name, handled, err := parseStatement(d, line, lineNo)
			if err != nil {
				return nil, err
			}
			if handled && name != "" {
				block = name
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read diagram text")
	}
	if !sawHeader {
		return nil, errors.New(errors.ErrCodeParse, "missing 'erDiagram' header")
	}
	if block != "" {
		return nil, errors.New(errors.ErrCodeParse, "unterminated attribute block for %q", block)
	}
	return d, nil
}

// parseStatement handles entity declarations, block openers, and
// relationship lines. It returns the entity name when a block was opened.
func parseStatement(d *er.Diagram, line string, lineNo int) (blockEntity string, handled bool, err error) {
	if m := blockRe.FindStringSubmatch(line); m != nil {
		d.AddEntity(m[1], m[2])
		return m[1], true, nil
	}

	if m := relLineRe.FindStringSubmatch(line); m != nil {
		parseRelationship(d, m)
		return "", true, nil
	}

	if m := endpointRe.FindStringSubmatch(line); m != nil && m[3] == "" {
		d.AddEntity(m[1], m[2])
		return "", true, nil
	}

	return "", false, errors.New(errors.ErrCodeParse, "line %d: unknown statement %q", lineNo, line)
}

// parseRelationship records the relationship captured by relLineRe:
// endpoint A (1-3), cardinality tokens and connector (4-6), endpoint B (7-9),
// optional role label (10).
func parseRelationship(d *er.Diagram, m []string) {
	spec := er.RelSpec{
		CardA:          leftCards[m[4]],
		CardB:          rightCards[m[6]],
		Identification: er.Identifying,
	}
	if m[5] == ".." {
		spec.Identification = er.NonIdentifying
	}
	role := strings.Trim(strings.TrimSpace(m[10]), `"`)

	d.AddEntity(m[1], m[2])
	d.AddEntity(m[7], m[8])
	if m[3] != "" || m[9] != "" {
		d.AddRelationshipBetween(m[1], m[3], role, m[7], m[9], spec)
	} else {
		d.AddRelationship(m[1], role, m[7], spec)
	}
}

// parseAttribute handles one line inside an entity block:
//
//	name
//	type name
//	type name PK,FK
//	type name PK "trailing comments are ignored"
func parseAttribute(line string, lineNo int) (er.Attribute, error) {
	// Strip a trailing quoted comment.
	if idx := strings.Index(line, `"`); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}

	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return er.Attribute{Name: fields[0]}, nil
	case 2:
		return er.Attribute{Type: fields[0], Name: fields[1]}, nil
	case 3:
		keys := strings.Split(fields[2], ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		return er.Attribute{Type: fields[0], Name: fields[1], Keys: keys}, nil
	}
	return er.Attribute{}, errors.New(errors.ErrCodeParse, "line %d: malformed attribute %q", lineNo, line)
}
