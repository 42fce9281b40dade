// Package normalisers holds the metadata extractors that sit between
// raw note content and the index. The markdown normaliser derives a
// note's title, tags and summary from YAML frontmatter and the body;
// malformed metadata degrades to absent fields, never an error.
package normalisers
