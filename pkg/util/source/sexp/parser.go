// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package sexp

import (
	"unicode"

	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/consensys/go-analog/pkg/util/source"
)

// Parse a given string into an S-expression, or return an error if the string
// is malformed.  A source map is also returned for debugging purposes.
func Parse(s *source.File) (SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)
	// Parse the input
	sExp, err := p.Parse()
	// Sanity check everything was parsed
	if p.skipWhiteSpace(); err == nil && p.index != len(p.text) {
		return nil, nil, p.error("unexpected remainder")
	}
	// Done
	return sExp, p.SourceMap(), err
}

// ParseAll converts a given string into zero or more S-expressions, or returns
// an error if the string is malformed.  A source map is also returned for
// debugging purposes.  The key distinction from Parse is that this function
// continues parsing after the first S-expression is encountered.
func ParseAll(s *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)
	//
	terms := make([]SExp, 0)
	// Parse the input
	for {
		term, err := p.Parse()
		// Sanity check everything was parsed
		if err != nil {
			return terms, p.srcmap, err
		} else if term == nil {
			// EOF reached
			return terms, p.srcmap, nil
		}
		//
		terms = append(terms, term)
	}
}

// Parser represents a parser in the process of parsing a given string into one
// or more S-expressions.  Nesting is tracked on an explicit stack of open lists
// and arrays, hence arbitrarily deep terms can be parsed.
type Parser struct {
	// Source file being parsed
	srcfile *source.File
	// Cache (for simplicity)
	text []rune
	// Determine current position within text
	index int
	// Mapping from constructed S-Expressions to their spans in the original text.
	srcmap *source.Map[SExp]
}

// A list or array whose elements are still being parsed.
type frame struct {
	// Index of the opening bracket.
	start int
	// Closing bracket expected.
	terminator rune
	// Elements parsed so far.
	elements []SExp
}

// NewParser constructs a new instance of Parser
func NewParser(srcfile *source.File) *Parser {
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  source.NewSourceMap[SExp](srcfile),
	}
}

// SourceMap returns the internal source map constructing during parsing.  Using
// this one can determine, for each SExp, where in the original text it
// originated.  This is helpful, for example, when reporting syntax errors.
func (p *Parser) SourceMap() *source.Map[SExp] {
	return p.srcmap
}

// Parse the next S-Expression, or produce an error.  This returns nil at the
// end of the input.
func (p *Parser) Parse() (SExp, *source.SyntaxError) {
	open := stack.NewStack[*frame]()
	//
	for {
		var term SExp
		// Skip over any whitespace, so the term starts at the right place.
		p.skipWhiteSpace()
		//
		start := p.index
		//
		if p.index == len(p.text) && open.IsEmpty() {
			return nil, nil
		} else if p.index == len(p.text) {
			p.index-- // backup
			return nil, p.error("unexpected end-of-file")
		}
		//
		switch c := p.text[p.index]; c {
		case '(':
			p.index++
			open.Push(&frame{start, ')', nil})
			//
			continue
		case '[':
			p.index++
			open.Push(&frame{start, ']', nil})
			//
			continue
		case ')', ']':
			if open.IsEmpty() || open.Peek(0).terminator != c {
				return nil, p.error(unexpected(c))
			}
			//
			p.index++
			top := open.Pop()
			start = top.start
			//
			if c == ')' {
				term = &List{top.elements}
			} else {
				term = &Array{top.elements}
			}
		default:
			term = &Symbol{p.parseSymbol()}
		}
		// Register item in source map
		p.srcmap.Put(term, source.NewSpan(start, p.index))
		//
		if open.IsEmpty() {
			return term, nil
		}
		//
		top := open.Peek(0)
		top.elements = append(top.elements, term)
	}
}

// Skip over any whitespace, including comments.
func (p *Parser) skipWhiteSpace() {
	for p.index < len(p.text) {
		switch c := p.text[p.index]; {
		case c == ';':
			// Comments run to the end of the line
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		case unicode.IsSpace(c):
			p.index++
		default:
			return
		}
	}
}

func (p *Parser) parseSymbol() string {
	start := p.index
	//
	for p.index < len(p.text) && !isDelimiter(p.text[p.index]) {
		p.index++
	}
	//
	return string(p.text[start:p.index])
}

// Construct a parser error at the current position in the input stream.  At
// the end of the input the span is empty, rather than extending beyond it.
func (p *Parser) error(msg string) *source.SyntaxError {
	span := source.NewSpan(p.index, min(p.index+1, len(p.text)))
	return p.srcfile.SyntaxError(span, msg)
}

func isDelimiter(c rune) bool {
	return c == '(' || c == ')' || c == '[' || c == ']' || c == ';' || unicode.IsSpace(c)
}

func unexpected(c rune) string {
	if c == ')' {
		return "unexpected end-of-list"
	}
	//
	return "unexpected end-of-array"
}
