package toolreg

import (
	"regexp"
	"strings"
)

// Doc is the result of parsing a structured documentation block.
type Doc struct {
	Summary string
	Params  map[string]string
	Returns string
}

type docSection int

const (
	sectionSummary docSection = iota
	sectionArgs
	sectionReturns
	sectionSkip
)

var (
	docHeaderRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]{0,24}):$`)
	docParamRe  = regexp.MustCompile(`^(?:[-*]\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)
)

func classifyHeader(line string) (docSection, bool) {
	m := docHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(m[1])) {
	case "args", "arguments", "parameters", "params":
		return sectionArgs, true
	case "returns", "return":
		return sectionReturns, true
	default:
		return sectionSkip, true
	}
}

// isHeader decides whether a header-looking line inside the args section is a new section
// or a parameter written as "name:" with its text on the following lines.
func isHeader(section, next docSection, indent, headerIndent, entryIndent int) bool {
	if section != sectionArgs {
		return true
	}
	if indent > headerIndent {
		return false
	}
	return next != sectionSkip || entryIndent > headerIndent
}

// ParseDoc extracts a description, per-parameter descriptions and a returns description
// from a Google-style documentation block:
//
//	Divide two numbers.
//
//	Args:
//	    a (float): Dividend.
//	    b: Divisor; continuation lines
//	       are joined.
//
//	Returns:
//	    The quotient.
//
// Parsing never fails: an empty or malformed block yields empty strings.
func ParseDoc(text string) Doc {
	doc := Doc{Params: map[string]string{}}
	if strings.TrimSpace(text) == "" {
		return doc
	}

	var (
		section      = sectionSummary
		paragraphs   []string
		current      []string
		entryIndent  = -1
		headerIndent int
		entryName    string
		returns      []string
	)
	flushParagraph := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	appendParam := func(name, text string) {
		if text == "" {
			return
		}
		if prev := doc.Params[name]; prev != "" {
			doc.Params[name] = prev + " " + text
			return
		}
		doc.Params[name] = text
	}

	for raw := range strings.SplitSeq(strings.ReplaceAll(text, "\t", "    "), "\n") {
		line := strings.TrimSpace(raw)
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		if line == "" {
			if section == sectionSummary {
				flushParagraph()
			}
			continue
		}
		if next, ok := classifyHeader(line); ok && isHeader(section, next, indent, headerIndent, entryIndent) {
			flushParagraph()
			section = next
			headerIndent = indent
			entryIndent = -1
			entryName = ""
			continue
		}
		switch section {
		case sectionSummary:
			current = append(current, line)
		case sectionReturns:
			returns = append(returns, line)
		case sectionArgs:
			if entryIndent < 0 {
				entryIndent = indent
			}
			if indent <= entryIndent {
				if m := docParamRe.FindStringSubmatch(line); m != nil {
					entryName = m[1]
					if _, seen := doc.Params[entryName]; !seen {
						doc.Params[entryName] = ""
					}
					appendParam(entryName, strings.TrimSpace(m[2]))
					continue
				}
			}
			if entryName != "" {
				appendParam(entryName, line)
			}
		case sectionSkip:
		}
	}
	flushParagraph()

	doc.Summary = strings.Join(paragraphs, "\n\n")
	doc.Returns = strings.Join(returns, " ")
	return doc
}
