package toolreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDoc_GoogleStyle(t *testing.T) {
	doc := ParseDoc(`Divide two numbers.

More details here.

Args:
    a (float): Dividend.
    b: Divisor; continuation lines
       are joined.

Returns:
    The quotient.
`)
	assert.Equal(t, "Divide two numbers.\n\nMore details here.", doc.Summary)
	assert.Equal(t, map[string]string{
		"a": "Dividend.",
		"b": "Divisor; continuation lines are joined.",
	}, doc.Params)
	assert.Equal(t, "The quotient.", doc.Returns)
}

func TestParseDoc_NameOnOwnLine(t *testing.T) {
	doc := ParseDoc(`Fetch a document.

Args:
    doc_id:
        The document id.
    b:
        Short name that looks like a header.
`)
	assert.Equal(t, "The document id.", doc.Params["doc_id"])
	assert.Equal(t, "Short name that looks like a header.", doc.Params["b"])
}

func TestParseDoc_SkipsUnknownSections(t *testing.T) {
	doc := ParseDoc(`Extract text.

Args:
    max_tokens: Token budget.

Raises:
    ValueError: never documented as a parameter.

Example:
    text_extractor(max_tokens=5)
`)
	assert.Equal(t, "Extract text.", doc.Summary)
	assert.Equal(t, map[string]string{"max_tokens": "Token budget."}, doc.Params)
	assert.Empty(t, doc.Returns)
}

func TestParseDoc_Bullets(t *testing.T) {
	doc := ParseDoc("Sum.\n\nParameters:\n- a: first\n- b: second\n")
	assert.Equal(t, map[string]string{"a": "first", "b": "second"}, doc.Params)
}

func TestParseDoc_SummaryOnly(t *testing.T) {
	doc := ParseDoc("Just a summary\nsecond line.")
	assert.Equal(t, "Just a summary second line.", doc.Summary)
	assert.Empty(t, doc.Params)
	assert.Empty(t, doc.Returns)
}

func TestParseDoc_Empty(t *testing.T) {
	doc := ParseDoc("   \n\t\n")
	assert.Empty(t, doc.Summary)
	assert.NotNil(t, doc.Params)
	assert.Empty(t, doc.Params)
}

func TestParseDoc_TabsAndMalformedLines(t *testing.T) {
	doc := ParseDoc("Tool.\n\nArgs:\n\tx: the x\n\t??? garbage\n")
	assert.Equal(t, "the x ??? garbage", doc.Params["x"])
}
