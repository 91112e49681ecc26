package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Load failure kinds. A *LoadError always wraps exactly one of these.
var (
	ErrEmptyInput = errors.New("input is empty")
	ErrNoColumns  = errors.New("no columns found")
	ErrNoRows     = errors.New("no data rows")
	ErrEncoding   = errors.New("unsupported text encoding")
	ErrDelimiter  = errors.New("could not parse with any supported delimiter")
)

// LoadError reports why a dataset could not be loaded. No partial dataset accompanies it.
type LoadError struct {
	Source string
	Kind   error
	Cause  error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %v: %v", e.Source, e.Kind, e.Cause)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Kind }

// LoadOptions controls loading of delimited text.
type LoadOptions struct {
	// Delimiter forces a delimiter. If 0, tries ',', ';', '\t' in that order.
	Delimiter rune
	// Name overrides the dataset name (defaults to the file base name).
	Name string
}

// Delimiters in fallback order.
var Delimiters = []rune{',', ';', '\t'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads and parses a delimited text file.
func LoadFile(path string, opt LoadOptions) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if opt.Name == "" {
		opt.Name = filepath.Base(path)
	}
	return Parse(data, opt)
}

// Load parses a delimited text stream.
func Load(r io.Reader, opt LoadOptions) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data, opt)
}

// Parse decodes and parses delimited text with a header row.
func Parse(data []byte, opt LoadOptions) (*Dataset, error) {
	src := opt.Name
	if src == "" {
		src = "dataset"
	}
	if len(bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))) == 0 {
		return nil, &LoadError{Source: src, Kind: ErrEmptyInput}
	}
	text, _, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Source: src, Kind: ErrEncoding, Cause: err}
	}
	delims := Delimiters
	if opt.Delimiter != 0 {
		delims = []rune{opt.Delimiter}
	}
	header, rows, err := readRecords(text, delims)
	if err != nil {
		return nil, &LoadError{Source: src, Kind: ErrDelimiter, Cause: err}
	}
	if len(header) == 0 || allBlank(header) {
		return nil, &LoadError{Source: src, Kind: ErrNoColumns}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Source: src, Kind: ErrNoRows}
	}
	ds, err := New(src, NormalizeNames(header), rows)
	if err != nil {
		return nil, &LoadError{Source: src, Kind: ErrDelimiter, Cause: err}
	}
	return ds, nil
}

// Decode converts raw bytes to text trying UTF-8, Latin-1 (Windows-1252) and ISO-8859-1 in order.
// It returns the decoded text and the name of the encoding that succeeded.
func Decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}
	if s, err := decodeWith(charmap.Windows1252, data); err == nil && !strings.ContainsRune(s, utf8.RuneError) {
		return s, "latin-1", nil
	}
	s, err := decodeWith(charmap.ISO8859_1, data)
	if err != nil {
		return "", "", err
	}
	return s, "iso-8859-1", nil
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readRecords parses text with each candidate delimiter until one succeeds.
func readRecords(text string, delims []rune) ([]string, [][]string, error) {
	firstLine := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		firstLine = text[:i]
	}
	var lastErr error
	for i, d := range delims {
		recs, err := parseWith(text, d)
		if err != nil {
			lastErr = fmt.Errorf("delimiter %q: %w", d, err)
			continue
		}
		if len(recs) == 0 {
			lastErr = fmt.Errorf("delimiter %q: no records", d)
			continue
		}
		// A lone column while a later candidate appears in the header means the wrong delimiter.
		if len(recs[0]) == 1 && i+1 < len(delims) && strings.ContainsAny(firstLine, string(delims[i+1:])) {
			lastErr = fmt.Errorf("delimiter %q: single column header", d)
			continue
		}
		return recs[0], recs[1:], nil
	}
	return nil, nil, lastErr
}

func parseWith(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	var out [][]string
	var width int
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if out == nil {
			width = len(rec)
		} else if len(rec) > width {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", len(out), width, len(rec))
		}
		out = append(out, rec)
	}
	return out, nil
}

// NormalizeName trims a header, replaces spaces with underscores and lower-cases it.
func NormalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

// NormalizeNames normalizes headers, naming blanks column_<n> and suffixing
// duplicates with the first _<n> not already taken.
func NormalizeNames(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeName(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = "column_" + strconv.Itoa(i+1)
		}
		if taken[n] {
			base := n
			for c := next[base] + 1; ; c++ {
				n = base + "_" + strconv.Itoa(c)
				if !taken[n] {
					next[base] = c
					break
				}
			}
		}
		taken[n] = true
		out[i] = n
	}
	return out
}

func allBlank(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes the dataset as comma-separated text; nulls become empty fields.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < d.Rows(); i++ {
		row := d.Row(i)
		rec := make([]string, len(row))
		for j, c := range row {
			if !c.Null {
				rec[j] = c.Text
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
