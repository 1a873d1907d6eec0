package textproc

import (
	"strings"
	"unicode/utf8"
)

const DefaultTerminators = "."

// Segmenter cuts text into sentence-like blocks.
//
// The lead segment, up to the first terminator, is kept verbatim. The rest is
// cut at every terminator, trimmed and re-terminated. It is not sentence
// boundary aware: abbreviations, decimals and ellipses are split too.
type Segmenter struct {
	Terminators string
}

func NewSegmenter(terminators string) *Segmenter {
	if strings.TrimSpace(terminators) == "" {
		terminators = DefaultTerminators
	}
	return &Segmenter{Terminators: terminators}
}

func (s *Segmenter) Segment(text string) []string {
	if text == "" {
		return []string{}
	}

	cut := strings.IndexAny(text, s.Terminators)
	if cut < 0 {
		return []string{text}
	}

	primary, _ := utf8.DecodeRuneInString(s.Terminators)
	_, size := utf8.DecodeRuneInString(text[cut:])
	lead := text[:cut]
	rest := text[cut+size:]

	tail := make([]string, 0, strings.Count(rest, string(primary))+1)
	for rest != "" {
		fragment := rest
		term := primary
		rest = ""
		if idx := strings.IndexAny(fragment, s.Terminators); idx >= 0 {
			r, n := utf8.DecodeRuneInString(fragment[idx:])
			rest = fragment[idx+n:]
			fragment = fragment[:idx]
			term = r
		}
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			tail = append(tail, trimmed+string(term))
		}
	}

	// One sentence and nothing after it: the text is already a single block.
	if len(tail) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(tail)+1)
	if lead != "" {
		out = append(out, lead)
	}
	return append(out, tail...)
}
