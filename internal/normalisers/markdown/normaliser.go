// Package markdown derives structured metadata from markdown notes.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser extracts title, tags and summary from markdown notes.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Meta derives metadata for a note. Title resolution order: frontmatter
// title, first top-level heading, filename. Tags are the union of
// frontmatter tags and inline #tag tokens. Malformed frontmatter degrades
// to absent metadata; Meta never fails.
func (n *Normaliser) Meta(path, content string) domain.NoteMeta {
	header, body := splitFrontmatter(content)
	fields := parseFrontmatter(header)

	meta := domain.NoteMeta{
		Title: resolveTitle(fields, body, path),
		Tags:  mergeTags(frontmatterTags(fields), inlineTags(body)),
	}
	if s, ok := fields["summary"].(string); ok {
		meta.Summary = strings.TrimSpace(s)
	}

	return meta
}

const frontmatterDelim = "---"

// splitFrontmatter separates a leading header fenced by --- lines from
// the body. Content without a complete header yields an empty header and
// the full content as body.
func splitFrontmatter(content string) (header, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r") != frontmatterDelim {
		return "", content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == frontmatterDelim {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", content
}

// parseFrontmatter decodes the YAML header. Malformed YAML yields nil.
func parseFrontmatter(header string) map[string]any {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
		return nil
	}
	return fields
}

// resolveTitle applies the title precedence rules.
func resolveTitle(fields map[string]any, body, path string) string {
	if t, ok := fields["title"].(string); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// frontmatterTags reads the tags field, accepting a YAML list or a
// comma-separated string.
func frontmatterTags(fields map[string]any) []string {
	var tags []string
	switch v := fields["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, strings.TrimPrefix(s, "#"))
				}
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, strings.TrimPrefix(s, "#"))
			}
		}
	}
	return tags
}

var (
	inlineTagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}][\p{L}\p{N}_/-]*)`)
	fencedRe    = regexp.MustCompile("(?s)```.*?```")
	inlineCode  = regexp.MustCompile("`[^`]+`")
)

// inlineTags collects #tag tokens from the body. Code spans are excluded;
// heading markers never match because they are followed by whitespace.
func inlineTags(body string) []string {
	cleaned := fencedRe.ReplaceAllString(body, "")
	cleaned = inlineCode.ReplaceAllString(cleaned, "")

	var tags []string
	for _, m := range inlineTagRe.FindAllStringSubmatch(cleaned, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

// mergeTags unions the two tag lists, frontmatter order first.
func mergeTags(frontmatter, inline []string) []string {
	seen := make(map[string]struct{}, len(frontmatter)+len(inline))
	var merged []string
	for _, t := range append(frontmatter, inline...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
	}
	return merged
}
