// Package ucd parses the Unicode Character Database file format used by
// DerivedCoreProperties.txt and feeds it to package uax31.
//
// The format is line-oriented:
//
//	0061..007A    ; XID_Start  # L&  [26] LATIN SMALL LETTER A..Z
//	005F          ; XID_Continue
//
// '#' starts a comment, blank lines are ignored, codepoints are
// hexadecimal and the range form is inclusive. Parsing reports distinct,
// errors.Is-inspectable failure kinds; see ErrMissingDelimiter,
// ErrMalformedCodepoint and ErrCodepointRange. I/O failures of the
// underlying reader pass through wrapped.
package ucd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/derekparker/trie"
	"golang.org/x/text/unicode/rangetable"

	"github.com/npillmayer/uax31"
)

const maxScalar = 0x10FFFF

var (
	// ErrMissingDelimiter marks a non-empty line without a ';' between
	// the codepoint field and the property name.
	ErrMissingDelimiter = errors.New("ucd: missing ';' delimiter")

	// ErrMalformedCodepoint marks a codepoint field that is not valid
	// hexadecimal.
	ErrMalformedCodepoint = errors.New("ucd: malformed hex codepoint")

	// ErrCodepointRange marks a codepoint beyond U+10FFFF.
	ErrCodepointRange = errors.New("ucd: codepoint outside the valid Unicode range")
)

// Reader streams property assignments from UCD-format data one line at a
// time. It implements uax31.PropertyReader.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps input for streaming. Lines may be long because of
// trailing comments; the scanner buffer allows up to 1 MiB.
func NewReader(input io.Reader) *Reader {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Reader{scanner: scanner}
}

// Next returns the next assignment: every codepoint in [lo, hi] carries
// property. It returns io.EOF when the input is exhausted.
func (r *Reader) Next() (lo, hi rune, property string, err error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		codepoints, rest, ok := strings.Cut(line, ";")
		if !ok {
			return 0, 0, "", fmt.Errorf("%w in line %q", ErrMissingDelimiter, line)
		}
		// Some UCD files carry further ';'-separated fields; the
		// property name is always the first one.
		property, _, _ = strings.Cut(rest, ";")
		property = strings.TrimSpace(property)
		lo, hi, err = parseRange(strings.TrimSpace(codepoints))
		if err != nil {
			return 0, 0, "", err
		}
		return lo, hi, property, nil
	}
	if err = r.scanner.Err(); err != nil {
		return 0, 0, "", fmt.Errorf("ucd: reading input: %w", err)
	}
	return 0, 0, "", io.EOF
}

func parseRange(field string) (rune, rune, error) {
	first, second, isRange := strings.Cut(field, "..")
	lo, err := parseCodepoint(first)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := parseCodepoint(second)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func parseCodepoint(s string) (rune, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCodepoint, s)
	}
	if v > maxScalar {
		return 0, fmt.Errorf("%w: %#x", ErrCodepointRange, v)
	}
	return rune(v), nil
}

// Load parses UCD-format property data and compiles a ready-to-use
// classifier. name identifies the data source for diagnostics.
func Load(name string, input io.Reader) (*uax31.Classifier, error) {
	return uax31.Compile(name, NewReader(input))
}

// Entry is one parsed assignment: codepoints [Lo, Hi] carry Property.
type Entry struct {
	Lo, Hi   rune
	Property string
}

// List is a fully parsed property file, keeping assignments in file order.
type List struct {
	entries []Entry
	byName  map[string][]Entry
	names   *trie.Trie // property name index for prefix queries
}

// Parse reads the whole input into a List. A parse error aborts with no
// partial result.
func Parse(input io.Reader) (*List, error) {
	reader := NewReader(input)
	list := &List{
		byName: make(map[string][]Entry),
		names:  trie.New(),
	}
	for {
		lo, hi, property, err := reader.Next()
		if err == io.EOF {
			return list, nil
		}
		if err != nil {
			return nil, err
		}
		entry := Entry{Lo: lo, Hi: hi, Property: property}
		list.entries = append(list.entries, entry)
		if _, seen := list.byName[property]; !seen {
			list.names.Add(property, nil)
		}
		list.byName[property] = append(list.byName[property], entry)
	}
}

// Len returns the number of parsed assignments.
func (l *List) Len() int { return len(l.entries) }

// Properties returns the set of property names applying to cp, in file
// order.
func (l *List) Properties(cp rune) []string {
	var props []string
	for _, entry := range l.entries {
		if cp < entry.Lo || cp > entry.Hi {
			continue
		}
		duplicate := false
		for _, p := range props {
			if p == entry.Property {
				duplicate = true
				break
			}
		}
		if !duplicate {
			props = append(props, entry.Property)
		}
	}
	return props
}

// Has reports whether cp carries the named property.
func (l *List) Has(cp rune, property string) bool {
	for _, entry := range l.byName[property] {
		if cp >= entry.Lo && cp <= entry.Hi {
			return true
		}
	}
	return false
}

// PropertyNames returns all property names seen in the file.
func (l *List) PropertyNames() []string {
	return l.names.Keys()
}

// PropertyNamesWithPrefix returns the property names starting with prefix.
func (l *List) PropertyNamesWithPrefix(prefix string) []string {
	if !l.names.HasKeysWithPrefix(prefix) {
		return nil
	}
	return l.names.PrefixSearch(prefix)
}

// RangeTable exports the codepoints carrying the named property as a
// stdlib range table, usable with unicode.Is.
func (l *List) RangeTable(property string) *unicode.RangeTable {
	entries := l.byName[property]
	tables := make([]*unicode.RangeTable, 0, len(entries))
	for _, entry := range entries {
		runes := make([]rune, 0, entry.Hi-entry.Lo+1)
		for cp := entry.Lo; cp <= entry.Hi; cp++ {
			runes = append(runes, cp)
		}
		tables = append(tables, rangetable.New(runes...))
	}
	return rangetable.Merge(tables...)
}

// Reader replays the parsed assignments as a streaming source, for
// feeding uax31.Compile from an already parsed List.
func (l *List) Reader() *ListReader {
	return &ListReader{list: l}
}

// ListReader implements uax31.PropertyReader over a parsed List.
type ListReader struct {
	list  *List
	index int
}

// Next returns the next assignment or io.EOF.
func (r *ListReader) Next() (lo, hi rune, property string, err error) {
	if r.index >= len(r.list.entries) {
		return 0, 0, "", io.EOF
	}
	entry := r.list.entries[r.index]
	r.index++
	return entry.Lo, entry.Hi, entry.Property, nil
}
