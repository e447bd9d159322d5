package scan

// lexContext is the comment or quote context a rune is read in. Only one is active at a
// time, so a quote can never open inside a comment and vice versa.
type lexContext uint8

const (
	codeContext lexContext = iota
	lineComment
	blockComment
	singleQuote
	doubleQuote
)

func (c lexContext) String() string {
	switch c {
	case lineComment:
		return "line-comment"
	case blockComment:
		return "block-comment"
	case singleQuote:
		return "single-quote"
	case doubleQuote:
		return "double-quote"
	default:
		return "code"
	}
}

type state struct {
	ctx   lexContext
	depth int

	// identifier run in progress
	inIdent bool
	system  bool
	run     []rune

	escape bool
	prev   rune
	// runes read since a single quote opened, used to decide whether an apostrophe closes it
	quoted []rune
}
