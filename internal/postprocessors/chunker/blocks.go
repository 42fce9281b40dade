package chunker

import (
	"regexp"
	"strings"
)

// blockKind tags the typed blocks the line scanner produces.
type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockList
	blockCode
	blockQuote
)

// block is one contiguous span of the note body. heading is the section
// heading context active when the block was scanned; a heading block
// carries its own text as context.
type block struct {
	kind    blockKind
	heading string
	lines   []string
}

func (b *block) text() string {
	return strings.Join(b.lines, "\n")
}

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
)

const fenceMarker = "```"

// parseBlocks scans the body line by line into typed blocks.
//
// Boundary rules: a heading always starts a new block and updates the
// heading context; a fenced code span is captured whole, fences included,
// regardless of internal blank lines; contiguous list items accumulate
// into one list block; contiguous >-prefixed lines accumulate into one
// blockquote; a blank line terminates the open paragraph/list/blockquote;
// any other non-blank line joins the open list/blockquote if one is open,
// otherwise a paragraph.
func parseBlocks(body string) []block {
	var (
		blocks  []block
		cur     *block
		heading string
		inFence bool
	)

	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if inFence {
			cur.lines = append(cur.lines, line)
			if strings.HasPrefix(trimmed, fenceMarker) {
				inFence = false
				flush()
			}
			continue
		}

		if strings.HasPrefix(trimmed, fenceMarker) {
			flush()
			cur = &block{kind: blockCode, heading: heading, lines: []string{line}}
			inFence = true
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			heading = strings.TrimSpace(m[2])
			blocks = append(blocks, block{
				kind:    blockHeading,
				heading: heading,
				lines:   []string{trimmed},
			})
			continue
		}

		if strings.HasPrefix(trimmed, ">") {
			if cur != nil && cur.kind == blockQuote {
				cur.lines = append(cur.lines, line)
			} else {
				flush()
				cur = &block{kind: blockQuote, heading: heading, lines: []string{line}}
			}
			continue
		}

		if listItemRe.MatchString(line) {
			if cur != nil && cur.kind == blockList {
				cur.lines = append(cur.lines, line)
			} else {
				flush()
				cur = &block{kind: blockList, heading: heading, lines: []string{line}}
			}
			continue
		}

		// Plain text continues an open list or blockquote (lazy
		// continuation), otherwise it belongs to a paragraph.
		if cur != nil {
			cur.lines = append(cur.lines, line)
			continue
		}
		cur = &block{kind: blockParagraph, heading: heading, lines: []string{line}}
	}

	// An unterminated fence is kept as scanned.
	flush()

	return blocks
}

var sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// splitSentences breaks text at sentence terminators (./!/? followed by
// whitespace), keeping each terminator with its sentence. Text without a
// terminator comes back as a single sentence.
func splitSentences(text string) []string {
	ends := sentenceEndRe.FindAllStringIndex(text, -1)
	if len(ends) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	var sentences []string
	start := 0
	for _, end := range ends {
		if s := strings.TrimSpace(text[start:end[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = end[1]
	}
	if start < len(text) {
		if s := strings.TrimSpace(text[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

const frontmatterDelim = "---"

// stripFrontmatter removes a leading metadata header fenced by ---
// lines. Content without a complete header is returned unchanged.
func stripFrontmatter(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r") != frontmatterDelim {
		return content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == frontmatterDelim {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return content
}
