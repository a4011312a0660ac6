// Package sourcemap builds standard Base64-VLQ source maps (version 3),
// the format spec.md §4.6's sourceMap option requires the generator to
// emit. No source-map library appears anywhere in the retrieved corpus
// (see DESIGN.md), so this is a small from-scratch encoder built the way
// github.com/whit3rabbit-phpmixer's other small leaf packages are shaped:
// one struct, a handful of methods, no exported state beyond the builder
// itself.
package sourcemap

import (
	"encoding/json"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Builder accumulates generated-to-original position mappings for a single
// output file and renders them to the "mappings" field of a source map v3
// document, in emission order (Add must be called with non-decreasing
// generated line numbers, matching how the generator writes output).
type Builder struct {
	file    string
	content string

	segments    []string // one joined group-of-segments string per generated line
	lineBuf     []string // segments accumulated for the current generated line
	curLine     int
	prevGenCol  int
	prevSrcLine int
	prevSrcCol  int
}

// NewBuilder starts a map for the named generated file.
func NewBuilder(file string) *Builder {
	return &Builder{file: file, curLine: 0}
}

// SetSourceContent embeds the original source text via sourcesContent, for
// maps generated with embedded sources (spec.md's "sourceMap" sentinel
// value rather than a bare file name).
func (b *Builder) SetSourceContent(content string) {
	b.content = content
}

// Add records that genLine/genCol in the output corresponds to
// srcLine/srcCol in the original source. genLine, srcLine and srcCol are
// 1-based on input (matching ast.Loc); genCol is 0-based. All are encoded
// 0-based per the source map spec.
func (b *Builder) Add(genLine, genCol, srcLine, srcCol int) {
	for b.curLine < genLine-1 {
		b.flushLine()
	}

	genCol0 := genCol
	srcLine0 := srcLine - 1
	srcCol0 := srcCol - 1
	if srcLine0 < 0 {
		srcLine0 = 0
	}
	if srcCol0 < 0 {
		srcCol0 = 0
	}

	seg := encodeVLQ(genCol0-b.prevGenCol) +
		encodeVLQ(0) + // single-source map: source index is always 0
		encodeVLQ(srcLine0-b.prevSrcLine) +
		encodeVLQ(srcCol0-b.prevSrcCol)

	b.lineBuf = append(b.lineBuf, seg)
	b.prevGenCol = genCol0
	b.prevSrcLine = srcLine0
	b.prevSrcCol = srcCol0
}

func (b *Builder) flushLine() {
	b.segments = append(b.segments, strings.Join(b.lineBuf, ","))
	b.lineBuf = nil
	b.prevGenCol = 0
	b.curLine++
}

// raw is the JSON shape of a source map v3 document.
type raw struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// String renders the accumulated mappings as a source map v3 JSON
// document.
func (b *Builder) String() string {
	b.flushLine()
	doc := raw{
		Version:  3,
		File:     b.file,
		Sources:  []string{b.file},
		Names:    []string{},
		Mappings: strings.Join(b.segments, ";"),
	}
	if b.content != "" {
		doc.SourcesContent = []string{b.content}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// encodeVLQ encodes a signed integer as a Base64-VLQ string per the
// source map v3 spec: the sign is folded into the low bit, then the
// magnitude is emitted five bits at a time, least significant group
// first, with the continuation bit set on every group but the last.
func encodeVLQ(n int) string {
	var v uint32
	if n < 0 {
		v = (uint32(-n) << 1) | 1
	} else {
		v = uint32(n) << 1
	}

	var b strings.Builder
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Chars[digit])
		if v == 0 {
			break
		}
	}
	return b.String()
}
