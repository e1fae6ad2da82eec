// Package flatfile reads and writes the colon-delimited, fixed-width,
// space-padded record files the game persists its world in: one file per
// entity kind, one record per line. Saving always rewrites the whole file.
package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RecordWidth is the byte width every written record is space-padded to.
// Records longer than this are written unpadded; padding only exists so the
// files keep a regular shape in an editor, nothing seeks by offset anymore.
const RecordWidth = 256

// A Record is the ordered field list of one line. Fields never contain
// colons or newlines.
type Record []string

// ReadRecords parses every non-blank line of r. Trailing padding and the
// terminating colon are stripped; a line without a terminating colon is a
// parse error carrying its line number.
func ReadRecords(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \r")
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, ":") {
			return nil, fmt.Errorf("line %d: record missing terminator", lineNo)
		}
		out = append(out, Record(strings.Split(strings.TrimSuffix(line, ":"), ":")))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteRecords writes every record colon-terminated and padded to
// RecordWidth.
func WriteRecords(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		line := strings.Join(rec, ":") + ":"
		if len(line) < RecordWidth {
			line += strings.Repeat(" ", RecordWidth-len(line))
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Fields provides positional, type-checked access to one record's fields.
// The first conversion failure sticks; callers check Err once at the end.
type Fields struct {
	rec Record
	pos int
	err error
}

func NewFields(rec Record) *Fields { return &Fields{rec: rec} }

func (f *Fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf(format, args...)
	}
}

func (f *Fields) next() (string, bool) {
	if f.err != nil {
		return "", false
	}
	if f.pos >= len(f.rec) {
		f.fail("field %d: record too short (%d fields)", f.pos, len(f.rec))
		return "", false
	}
	s := f.rec[f.pos]
	f.pos++
	return s, true
}

func (f *Fields) String() string {
	s, _ := f.next()
	return s
}

func (f *Fields) Int() int {
	s, ok := f.next()
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f.fail("field %d: %q is not an integer", f.pos-1, s)
		return 0
	}
	return n
}

func (f *Fields) Int64() int64 {
	s, ok := f.next()
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		f.fail("field %d: %q is not an integer", f.pos-1, s)
		return 0
	}
	return n
}

func (f *Fields) Float() float64 {
	s, ok := f.next()
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f.fail("field %d: %q is not a number", f.pos-1, s)
		return 0
	}
	return v
}

func (f *Fields) Bool() bool {
	return f.Int() != 0
}

// Err reports the first conversion error, if any. Rest reports how many
// fields were left unconsumed.
func (f *Fields) Err() error { return f.err }

func (f *Fields) Rest() int { return len(f.rec) - f.pos }

// Done is Err plus a completeness check: save records have an exact field
// count, so anything left over means a schema mismatch.
func (f *Fields) Done() error {
	if f.err == nil && f.Rest() != 0 {
		f.fail("record has %d trailing fields", f.Rest())
	}
	return f.err
}

// RecordBuilder is the writing counterpart of Fields.
type RecordBuilder struct {
	rec Record
}

func (b *RecordBuilder) String(s string) *RecordBuilder {
	b.rec = append(b.rec, strings.ReplaceAll(s, ":", ";"))
	return b
}

func (b *RecordBuilder) Int(n int) *RecordBuilder {
	b.rec = append(b.rec, strconv.Itoa(n))
	return b
}

func (b *RecordBuilder) Int64(n int64) *RecordBuilder {
	b.rec = append(b.rec, strconv.FormatInt(n, 10))
	return b
}

func (b *RecordBuilder) Float(v float64) *RecordBuilder {
	b.rec = append(b.rec, strconv.FormatFloat(v, 'g', -1, 64))
	return b
}

func (b *RecordBuilder) Bool(v bool) *RecordBuilder {
	if v {
		return b.Int(1)
	}
	return b.Int(0)
}

func (b *RecordBuilder) Record() Record { return b.rec }
