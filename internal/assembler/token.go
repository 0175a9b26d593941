/*
 * mips32 - Assembly source tokenizer
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
 * RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

package assembler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TokenKind names the lexical class of a Token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokLabel
	TokDirective
	TokIdent // mnemonic, register name or forward-reference symbol
	TokNumber
	TokString
	TokComma
	TokLParen
	TokRParen
	TokColon
)

// Token is the sum type produced by the lexer: Kind picks which of
// Text/Int is meaningful.
type Token struct {
	Kind TokenKind
	Text string
	Int  int64
	Col  int
}

// lexRules is tried in order at each position; the first matching
// pattern wins, so longer/more specific patterns are listed first.
// Each regexp is anchored to the start of the remaining input.
var lexRules = []struct {
	kind TokenKind
	re   *regexp.Regexp
}{
	{TokDirective, regexp.MustCompile(`^\.[A-Za-z][A-Za-z0-9_]*`)},
	{TokString, regexp.MustCompile(`^"(\\.|[^"\\])*"`)},
	{TokNumber, regexp.MustCompile(`^'(\\.|[^'\\])'`)},
	{TokNumber, regexp.MustCompile(`^0[xX][0-9A-Fa-f]+`)},
	{TokNumber, regexp.MustCompile(`^-?[0-9]+`)},
	{TokIdent, regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*|[0-9]+)`)},
	{TokIdent, regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)},
	{TokComma, regexp.MustCompile(`^,`)},
	{TokLParen, regexp.MustCompile(`^\(`)},
	{TokRParen, regexp.MustCompile(`^\)`)},
	{TokColon, regexp.MustCompile(`^:`)},
}

// lexLine tokenizes one already comment-stripped source line. A
// trailing identifier immediately followed by ':' is folded into a
// single TokLabel rather than an TokIdent/TokColon pair, since every
// caller wants the label name, not its punctuation.
func lexLine(line string) ([]Token, error) {
	var toks []Token
	col := 0
	for {
		rest := line[col:]
		trimmed := strings.TrimLeft(rest, " \t\r")
		col += len(rest) - len(trimmed)
		if col >= len(line) {
			break
		}
		rest = line[col:]

		matched := false
		for _, rule := range lexRules {
			loc := rule.re.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				continue
			}
			text := rest[loc[0]:loc[1]]
			switch rule.kind {
			case TokIdent:
				if strings.HasPrefix(rest[loc[1]:], ":") {
					toks = append(toks, Token{Kind: TokLabel, Text: text, Col: col})
					col += loc[1] + 1
				} else {
					toks = append(toks, Token{Kind: TokIdent, Text: text, Col: col})
					col += loc[1]
				}
			case TokNumber:
				var n int64
				var err error
				if strings.HasPrefix(text, "'") {
					n, err = parseCharLiteral(text)
				} else {
					n, err = parseNumber(text)
				}
				if err != nil {
					return nil, fmt.Errorf("column %d: %w", col, err)
				}
				toks = append(toks, Token{Kind: TokNumber, Text: text, Int: n, Col: col})
				col += loc[1]
			case TokString:
				s, err := unescapeString(text[1 : len(text)-1])
				if err != nil {
					return nil, fmt.Errorf("column %d: %w", col, err)
				}
				toks = append(toks, Token{Kind: TokString, Text: s, Col: col})
				col += loc[1]
			default:
				toks = append(toks, Token{Kind: rule.kind, Text: text, Col: col})
				col += loc[1]
			}
			matched = true
			break
		}
		if !matched {
			return nil, fmt.Errorf("column %d: unrecognized character %q", col, rest[0])
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Col: len(line)})
	return toks, nil
}

func parseNumber(text string) (int64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return strconv.ParseInt(text[2:], 16, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

// parseCharLiteral decodes a 'c' literal (the quotes included in text)
// into its byte value, honoring the same escape set as string literals.
func parseCharLiteral(text string) (int64, error) {
	body, err := unescapeString(text[1 : len(text)-1])
	if err != nil {
		return 0, err
	}
	if len(body) != 1 {
		return 0, fmt.Errorf("char literal must decode to exactly one byte")
	}
	return int64(body[0]), nil
}

// unescapeString decodes the escape set `\n \t \\ \" \0 \'` within an
// already-unquoted string or char body. strconv.Unquote is not used here
// because Go string syntax requires octal escapes to carry exactly three
// digits (`\000`), while this assembler's escape set includes a bare `\0`.
func unescapeString(body string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("unterminated escape sequence")
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '0':
			b.WriteByte(0)
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", body[i])
		}
	}
	return b.String(), nil
}

// stripComment removes a trailing "#" or ";" comment, whichever
// starts first, without looking inside string literals — assembly
// source here never needs a literal '#' or ';' inside a quoted
// string's reach of a comment marker.
func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}
