// Package extractor recovers a structural model from canonical Drizzle
// table declarations.
//
// Scanning runs in two stages. The block stage finds
//
//	export const <id> = pgTable('<id>', { ... });
//
// declarations whose variable and quoted table name are identical. The column
// stage then walks each accepted body line by line. A line that does not have
// the canonical column shape is skipped without affecting its neighbours.
package extractor

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

var (
	blockHeader = regexp.MustCompile(`export\s+const\s+(\w+)\s*=\s*pgTable\('(\w+)'\s*,\s*\{`)
	columnHead  = regexp.MustCompile(`^\s*(\w+)\s*:\s*([A-Za-z]\w*(?:\([^()']*\))?)\('(\w+)'\)`)
	refPayload  = regexp.MustCompile(`^//\s*references:\s*([\w.]+)`)
)

const blockTerminator = "});"

// Block is one accepted table declaration.
type Block struct {
	Name string
	Body string
}

// Extract scans text and returns the tables and relations it declares.
// It never fails; text with no recognizable blocks yields an empty model.
func Extract(text string) *schema.Model {
	model := &schema.Model{
		Tables:    []schema.Table{},
		Relations: []schema.Relation{},
	}

	for _, b := range ScanBlocks(text) {
		table := schema.Table{Name: b.Name, Columns: []schema.Column{}}

		for _, line := range strings.Split(b.Body, "\n") {
			col, ref, ok := ScanColumn(line)
			if !ok {
				continue
			}
			table.Columns = append(table.Columns, col)

			if ref != "" {
				model.Relations = append(model.Relations, newRelation(b.Name, col.Name, ref))
			}
		}

		model.Tables = append(model.Tables, table)
	}

	return model
}

// ScanBlocks returns the accepted blocks of text in order of appearance.
// Headers whose variable and quoted name differ, or that are never
// terminated, are skipped. Bodies are not scanned for nested blocks.
func ScanBlocks(text string) []Block {
	var blocks []Block

	pos := 0
	for pos < len(text) {
		loc := blockHeader.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}

		headerEnd := pos + loc[1]
		varName := text[pos+loc[2] : pos+loc[3]]
		litName := text[pos+loc[4] : pos+loc[5]]

		if varName != litName {
			pos = pos + loc[0] + 1
			continue
		}

		end := strings.Index(text[headerEnd:], blockTerminator)
		if end < 0 {
			break // No later header can be terminated either
		}

		blocks = append(blocks, Block{
			Name: varName,
			Body: text[headerEnd : headerEnd+end],
		})
		pos = headerEnd + end + len(blockTerminator)
	}

	return blocks
}

// ScanColumn matches a single column declaration line. It returns the
// column, the raw reference payload (empty when absent) and whether the
// line had the canonical shape.
func ScanColumn(line string) (schema.Column, string, bool) {
	loc := columnHead.FindStringSubmatchIndex(line)
	if loc == nil {
		return schema.Column{}, "", false
	}

	colType := line[loc[4]:loc[5]]
	name := line[loc[6]:loc[7]]

	chain, rest, ok := scanChain(line[loc[1]:])
	if !ok {
		return schema.Column{}, "", false
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ",") {
		return schema.Column{}, "", false
	}
	rest = strings.TrimSpace(rest[1:])

	var ref string
	switch {
	case rest == "":
	case strings.HasPrefix(rest, "//"):
		if m := refPayload.FindStringSubmatch(rest); m != nil {
			ref = m[1]
		}
	default:
		return schema.Column{}, "", false
	}

	return schema.Column{
		Name:        name,
		Type:        colType,
		Constraints: constraints(chain),
	}, ref, true
}

func constraints(c chain) []string {
	tags := []string{}

	if strings.Contains(c.raw, "primaryKey()") {
		tags = append(tags, schema.ConstraintPK)
	}
	if strings.Contains(c.raw, "notNull()") {
		tags = append(tags, schema.ConstraintNotNull)
	}
	if strings.Contains(c.raw, "unique()") {
		tags = append(tags, schema.ConstraintUnique)
	}
	if expr, ok := c.arg("default"); ok && expr != "" {
		tags = append(tags, schema.ConstraintDefaultPrefix+expr)
	}

	return tags
}

func newRelation(from, column, payload string) schema.Relation {
	refTable, refCol, _ := strings.Cut(payload, ".")

	// Only the target is lower-cased; source and label keep their text.
	return schema.Relation{
		From:         from,
		To:           strings.ToLower(refTable),
		Label:        column + " → " + payload,
		Column:       column,
		TargetColumn: refCol,
	}
}
