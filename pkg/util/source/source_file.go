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
package source

import (
	"fmt"
	"os"
	"strings"
)

// File represents a given source file (typically stored on disk), though it may
// also be a string given inline (e.g. embedded in a job description).
type File struct {
	// File name for this source file.
	filename string
	// Contents of this file, as runes so that spans count characters.
	contents []rune
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// ReadFile reads a given source file from disk, or produces an error.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// EnclosingLine determines the line of this source file which encloses the
// start of a span.  Positions beyond the end of the file are enclosed by its
// last line.
func (s *File) EnclosingLine(span Span) Line {
	var (
		num   = 1
		start = 0
	)
	//
	for i := 0; i < min(span.start, len(s.contents)); i++ {
		if s.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}
	//
	end := start
	//
	for end < len(s.contents) && s.contents[end] != '\n' {
		end++
	}
	//
	return Line{s.contents, Span{start, end}, num}
}

// Line provides information about a given line within the original string.
// This includes the line number (counting from 1), and the span of the line
// within the original string.
type Line struct {
	// Original text
	text []rune
	// Span within original text of this line.
	span Span
	// Line number of this line (counting from 1).
	number int
}

// Get the string representing this line.
func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number gets the line number of this line, where the first line in a string
// has line number 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the starting index of this line in the original string.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters on this line.
func (p *Line) Length() int {
	return p.span.Length()
}

// SyntaxError is a structured error which retains the index into the original
// string where an error occurred, along with an error message.
type SyntaxError struct {
	srcfile *File
	// Index into string being parsed where error arose.
	span Span
	// Error message being reported
	msg string
}

// SourceFile returns the underlying source file that this syntax error covers.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	line := p.srcfile.EnclosingLine(p.span)
	//
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line.Number(), 1+p.span.start-line.Start(), p.msg)
}

// Highlight renders this error together with the line on which it arises, with
// the offending text underlined.  Spans running over several lines are
// underlined only to the end of their first line.
func (p *SyntaxError) Highlight() string {
	var (
		builder strings.Builder
		line    = p.srcfile.EnclosingLine(p.span)
		offset  = min(p.span.start-line.Start(), line.Length())
		length  = max(1, min(line.Length()-offset, p.span.Length()))
	)
	//
	builder.WriteString(fmt.Sprintf("%s:%d:%d-%d %s\n\n", p.srcfile.filename, line.Number(), 1+offset,
		1+offset+length, p.msg))
	builder.WriteString(line.String())
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat(" ", offset))
	builder.WriteString(strings.Repeat("^", length))
	//
	return builder.String()
}
