// Package pslg reads point files: polygon outlines written as a sequence
// of "@ x y" point directives, each optionally followed by a color
// directive "# r g b" or "# v" (gray). Components are in [0, 1].
// Directives are separated by arbitrary whitespace, including newlines.
//
// Files are read as UTF-8; a UTF-16 or UTF-8 byte order mark switches the
// decoding accordingly.
package pslg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/gogpu/refine"
	"github.com/gogpu/refine/render"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("pslg: syntax error")

// File is the content of a point file.
type File struct {
	// Points lists the outline in file order.
	Points []refine.Vector2

	// Colors maps a point index to the color given right after it.
	Colors map[int]render.RGBA
}

// ColorOf returns the color given for the point at pos, if any.
func (f *File) ColorOf(pos refine.Vector2) (render.RGBA, bool) {
	for i, p := range f.Points {
		if p == pos {
			c, ok := f.Colors[i]
			return c, ok
		}
	}
	return render.RGBA{}, false
}

type token struct {
	text string
	line int
}

// Parse reads a point file from r.
func Parse(r io.Reader) (*File, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	f := &File{Colors: make(map[int]render.RGBA)}
	for i := 0; i < len(toks); {
		tok := toks[i]
		switch tok.text {
		case "@":
			nums := numbers(toks[i+1:], 2)
			if len(nums) != 2 {
				return nil, fmt.Errorf("%w: line %d: point needs 2 numbers, got %d", ErrSyntax, tok.line, len(nums))
			}
			f.Points = append(f.Points, refine.V2(nums[0], nums[1]))
			i += 3
		case "#":
			if len(f.Points) == 0 {
				return nil, fmt.Errorf("%w: line %d: color before any point", ErrSyntax, tok.line)
			}
			nums := numbers(toks[i+1:], 3)
			var c render.RGBA
			switch len(nums) {
			case 1:
				c = render.Gray(nums[0])
			case 3:
				c = render.RGB(nums[0], nums[1], nums[2])
			default:
				return nil, fmt.Errorf("%w: line %d: color needs 1 or 3 numbers, got %d", ErrSyntax, tok.line, len(nums))
			}
			f.Colors[len(f.Points)-1] = c
			i += 1 + len(nums)
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrSyntax, tok.line, tok.text)
		}
	}
	return f, nil
}

// ReadFile parses the point file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// tokenize decodes r and splits it into whitespace-separated tokens. A
// directive sign glued to its first number ("@1") is split off. Lines may
// be of any length.
func tokenize(r io.Reader) ([]token, error) {
	var toks []token
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	sc := bufio.NewScanner(transform.NewReader(r, dec))
	lines := &lineCounter{line: 1}
	sc.Split(lines.scanWords)
	for sc.Scan() {
		field := sc.Text()
		if len(field) > 1 && (field[0] == '@' || field[0] == '#') {
			toks = append(toks, token{field[:1], lines.tokenLine}, token{field[1:], lines.tokenLine})
			continue
		}
		toks = append(toks, token{field, lines.tokenLine})
	}
	return toks, sc.Err()
}

// lineCounter wraps bufio.ScanWords and tracks the line of the last token.
type lineCounter struct {
	line      int
	tokenLine int
}

func (c *lineCounter) scanWords(data []byte, atEOF bool) (int, []byte, error) {
	advance, tok, err := bufio.ScanWords(data, atEOF)
	if tok == nil {
		c.line += bytes.Count(data[:advance], newline)
		return advance, tok, err
	}
	start := cap(data) - cap(tok)
	c.line += bytes.Count(data[:start], newline)
	c.tokenLine = c.line
	c.line += bytes.Count(data[start+len(tok):advance], newline)
	return advance, tok, err
}

var newline = []byte{'\n'}

// numbers parses up to n leading tokens as floats, stopping at the first
// token that is not a number.
func numbers(toks []token, n int) []float64 {
	var out []float64
	for _, tok := range toks[:min(n, len(toks))] {
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			break
		}
		out = append(out, v)
	}
	return out
}
