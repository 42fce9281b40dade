// Package chunker splits note content into bounded, overlapping chunks.
//
// The chunker is deterministic and pure: identical content and options
// always produce the identical chunk sequence. It parses the note body
// into typed markdown blocks, packs consecutive blocks greedily under a
// token budget, and carries a small word overlap between adjacent chunks
// so retrieval does not lose context at boundaries.
package chunker

import (
	"strings"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// DefaultMaxTokens is the default per-chunk token budget.
const DefaultMaxTokens = 400

// DefaultOverlapTokens is the default approximate overlap between chunks.
const DefaultOverlapTokens = 50

// charsPerToken is the fixed approximation ratio used in place of a real
// tokenizer. estimateTokens may be re-pointed at a tokenizer without
// touching the packing logic.
const charsPerToken = 4

// overlapWordRatio converts the overlap token budget into a word count.
const overlapWordRatio = 0.75

// previewLength is the approximate preview size in runes.
const previewLength = 200

// blockSeparator joins blocks and the overlap seed inside a chunk.
const blockSeparator = "\n\n"

// Processor splits note content into chunks. It implements the
// driven.Chunker port.
type Processor struct {
	maxTokens     int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Processor)

// WithMaxTokens sets the per-chunk token budget.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithOverlapTokens sets the approximate overlap between chunks.
func WithOverlapTokens(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlapTokens = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap stays small relative to the budget
	if p.overlapTokens >= p.maxTokens {
		p.overlapTokens = p.maxTokens / 4
	}

	return p
}

// Chunk splits content into ordered chunks. A leading metadata header is
// stripped first; empty or whitespace-only remainder yields no chunks.
func (p *Processor) Chunk(content string) ([]domain.Chunk, error) {
	body := stripFrontmatter(content)
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	var (
		chunks  []domain.Chunk
		parts   []string // block texts in the current chunk
		heading string   // heading context of the chunk's first block
		seed    string   // overlap carried from the previous chunk
	)

	emit := func() {
		text := strings.TrimSpace(assemble(seed, parts))
		if text == "" {
			parts = nil
			return
		}
		chunks = append(chunks, p.newChunk(text, heading))
		seed = p.overlapText(text)
		parts = nil
	}

	for _, b := range parseBlocks(body) {
		text := b.text()

		// A block that alone busts the budget cannot be merged; close
		// the current chunk and split the block by sentence. Fenced code
		// is never split, whatever its size.
		if estimateTokens(text) > p.maxTokens && b.kind != blockCode {
			if len(parts) > 0 {
				emit()
			}
			chunks, seed = p.packSentences(chunks, seed, b)
			continue
		}

		candidate := assemble(seed, append(parts[:len(parts):len(parts)], text))
		if estimateTokens(candidate) > p.maxTokens {
			if len(parts) == 0 {
				// Only the seed is in the way; drop it rather than emit
				// a pure-overlap chunk or bust the budget.
				seed = ""
				heading = b.heading
				parts = append(parts, text)
				continue
			}
			emit()
			// Re-check against the fresh seed.
			if estimateTokens(assemble(seed, []string{text})) > p.maxTokens {
				seed = ""
			}
		}
		if len(parts) == 0 {
			heading = b.heading
		}
		parts = append(parts, text)
	}

	if len(parts) > 0 {
		emit()
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
	}

	return chunks, nil
}

// packSentences splits an oversized block into sentences and re-packs
// them under the same budget-and-overlap rule. Every sub-chunk carries
// the block's heading context. A single sentence that alone exceeds the
// budget is emitted as one over-budget chunk; it cannot be split further.
func (p *Processor) packSentences(chunks []domain.Chunk, seed string, b block) ([]domain.Chunk, string) {
	var parts []string

	emit := func() {
		text := strings.TrimSpace(assembleWords(seed, parts))
		if text == "" {
			parts = nil
			return
		}
		chunks = append(chunks, p.newChunk(text, b.heading))
		seed = p.overlapText(text)
		parts = nil
	}

	for _, sentence := range splitSentences(b.text()) {
		candidate := assembleWords(seed, append(parts[:len(parts):len(parts)], sentence))
		if estimateTokens(candidate) > p.maxTokens {
			if len(parts) == 0 {
				seed = ""
				parts = append(parts, sentence)
				continue
			}
			emit()
			if estimateTokens(assembleWords(seed, []string{sentence})) > p.maxTokens {
				seed = ""
			}
		}
		parts = append(parts, sentence)
	}
	emit()

	return chunks, seed
}

func (p *Processor) newChunk(text, heading string) domain.Chunk {
	return domain.Chunk{
		Content:     text,
		Preview:     preview(text),
		Heading:     heading,
		ContentHash: domain.HashContent(text),
	}
}

// overlapText returns the trailing words of a closed chunk, joined by
// single spaces. The word count approximates overlapTokens; callers must
// treat it as a heuristic, not a token-exact guarantee.
func (p *Processor) overlapText(closed string) string {
	if p.overlapTokens <= 0 {
		return ""
	}
	n := int(float64(p.overlapTokens) * overlapWordRatio)
	if n <= 0 {
		return ""
	}
	words := strings.Fields(closed)
	if len(words) == 0 {
		return ""
	}
	if n > len(words) {
		n = len(words)
	}
	tail := strings.Join(words[len(words)-n:], " ")
	// Never carry fence markers into the next chunk.
	if strings.Contains(tail, fenceMarker) {
		return ""
	}
	return tail
}

// assemble joins the overlap seed and block texts into chunk content.
func assemble(seed string, parts []string) string {
	if seed == "" {
		return strings.Join(parts, blockSeparator)
	}
	if len(parts) == 0 {
		return seed
	}
	return seed + blockSeparator + strings.Join(parts, blockSeparator)
}

// assembleWords joins the overlap seed and sentences with single spaces.
func assembleWords(seed string, parts []string) string {
	joined := strings.Join(parts, " ")
	if seed == "" {
		return joined
	}
	if joined == "" {
		return seed
	}
	return seed + " " + joined
}

// estimateTokens approximates the token cost of s as ceil(len/4).
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// preview truncates content to roughly previewLength runes at a word
// boundary.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	cut := string(runes[:previewLength])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \t\n") + "..."
}
