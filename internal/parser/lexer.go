// Package parser implements the recursive-descent façade spec.md §4.6
// requires: Parse(source) returns a Program whose nodes carry byte-offset
// Ranges (the line/column Loc field is left zero), import/export and
// top-level return accepted per the fixed
// option set, over the subset of ECMAScript SPEC_FULL.md §3 scopes the
// pipeline to (var declarations, functions, the common statement and
// expression forms, and comments). No ECMAScript parser exists anywhere
// in the retrieved corpus (see DESIGN.md), so this is built from scratch
// in the shape the teacher's VKCOM/php-parser façade is used in
// (obfuscator.go's parser.Parse(src, parserConfig) call): a single
// Parse entry point returning a root node plus a structured error.
package parser

import (
	"unicode/utf8"

	"github.com/whit3rabbit/jsmixer/internal/ast"
)

// tokenKind tags one lexical token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokPunct
	tokComment
)

type token struct {
	kind  tokenKind
	text  string // for idents/keywords/punct: the literal text; for strings: the decoded value
	raw   string // original source text, including quotes for strings
	line  int
	col   int
	start int
	end   int
}

var keywords = map[string]bool{
	"var": true, "function": true, "return": true, "if": true, "else": true,
	"for": true, "while": true, "break": true, "continue": true,
	"true": true, "false": true, "null": true, "new": true, "typeof": true,
	"delete": true, "void": true, "in": true, "instanceof": true,
}

// lexer scans UTF-8 JavaScript source into tokens on demand. Positions are
// byte offsets into the original source; Line/Col are 1-based.
type lexer struct {
	src        string
	pos        int
	line       int
	col        int
	pending    []*ast.Comment // comments seen since the last non-comment token, to attach as leading
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

// skipSpaceAndComments consumes whitespace and comments, recording
// comments into l.pending so the next real token can attach them as
// leading comments.
func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			l.advance()
		case b == '/' && l.peekByteAt(1) == '/':
			start := l.pos
			startLine, startCol := l.line, l.col
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
			text := l.src[start:l.pos]
			l.pending = append(l.pending, &ast.Comment{
				Kind: ast.CommentLine, Text: text, Leading: true,
				Range: ast.Range{Start: start, End: l.pos},
			})
			_ = startLine
			_ = startCol
		case b == '/' && l.peekByteAt(1) == '*':
			start := l.pos
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
			text := l.src[start:l.pos]
			l.pending = append(l.pending, &ast.Comment{
				Kind: ast.CommentBlock, Text: text, Leading: true,
				Range: ast.Range{Start: start, End: l.pos},
			})
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// next returns the next non-trivia token; any comments scanned ahead of it
// are left in l.pending for the parser to attach as leading comments.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	startLine, startCol, start := l.line, l.col, l.pos

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: startLine, col: startCol, start: start, end: start}, nil
	}

	b := l.peekByte()

	// Identifiers and keywords.
	if r, _ := utf8.DecodeRuneInString(l.src[l.pos:]); isIdentStart(r) {
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			for i := 0; i < size; i++ {
				l.advance()
			}
		}
		text := l.src[start:l.pos]
		kind := tokIdent
		if keywords[text] {
			kind = tokKeyword
		}
		return token{kind: kind, text: text, line: startLine, col: startCol, start: start, end: l.pos}, nil
	}

	// Numbers.
	if isDigit(b) {
		for l.pos < len(l.src) && (isDigit(l.peekByte()) || l.peekByte() == '.' ||
			l.peekByte() == 'x' || l.peekByte() == 'X' ||
			(l.peekByte() >= 'a' && l.peekByte() <= 'f') ||
			(l.peekByte() >= 'A' && l.peekByte() <= 'F') ||
			l.peekByte() == 'e' || l.peekByte() == 'E') {
			l.advance()
		}
		text := l.src[start:l.pos]
		return token{kind: tokNumber, text: text, raw: text, line: startLine, col: startCol, start: start, end: l.pos}, nil
	}

	// Strings.
	if b == '"' || b == '\'' {
		quote := b
		l.advance()
		var value []byte
		for l.pos < len(l.src) && l.peekByte() != quote {
			c := l.advance()
			if c == '\\' && l.pos < len(l.src) {
				esc := l.advance()
				value = append(value, decodeEscape(esc)...)
				continue
			}
			value = append(value, c)
		}
		if l.pos < len(l.src) {
			l.advance() // closing quote
		} else {
			return token{}, &lexError{Message: "unterminated string literal", Line: startLine, Col: startCol}
		}
		raw := l.src[start:l.pos]
		return token{kind: tokString, text: string(value), raw: raw, line: startLine, col: startCol, start: start, end: l.pos}, nil
	}

	// Punctuation, longest match first.
	for _, p := range multiCharPuncts {
		if hasPrefixAt(l.src, l.pos, p) {
			for range p {
				l.advance()
			}
			return token{kind: tokPunct, text: p, line: startLine, col: startCol, start: start, end: l.pos}, nil
		}
	}
	l.advance()
	return token{kind: tokPunct, text: string(b), line: startLine, col: startCol, start: start, end: l.pos}, nil
}

func hasPrefixAt(s string, pos int, prefix string) bool {
	if pos+len(prefix) > len(s) {
		return false
	}
	return s[pos:pos+len(prefix)] == prefix
}

// multiCharPuncts is checked longest-first so "===" is not lexed as "==" + "=".
var multiCharPuncts = []string{
	"===", "!==", "**=", "<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "??",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "=>",
	"**",
}

func decodeEscape(c byte) []byte {
	switch c {
	case 'n':
		return []byte{'\n'}
	case 't':
		return []byte{'\t'}
	case 'r':
		return []byte{'\r'}
	case '\\':
		return []byte{'\\'}
	case '\'':
		return []byte{'\''}
	case '"':
		return []byte{'"'}
	case '0':
		return []byte{0}
	default:
		return []byte{c}
	}
}

// lexError is the internal lexer error, converted to *obferrors.ParseError
// at the Parse entry point.
type lexError struct {
	Message string
	Line    int
	Col     int
}

func (e *lexError) Error() string { return e.Message }
