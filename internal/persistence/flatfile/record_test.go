package flatfile

import (
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	in := "1:Alpha:300:\n" +
		"2:Beta:400:" + strings.Repeat(" ", 100) + "\n" +
		"\n" +
		"3:Gamma:500:\n"
	recs, err := ReadRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[1][1] != "Beta" {
		t.Fatalf("padding not stripped: %q", recs[1])
	}
}

func TestReadRecordsRequiresTerminator(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("1:Alpha:300\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("want terminator error with line number, got %v", err)
	}
}

func TestWriteRecordsPads(t *testing.T) {
	var sb strings.Builder
	if err := WriteRecords(&sb, []Record{{"1", "Alpha"}}); err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSuffix(sb.String(), "\n")
	if len(line) != RecordWidth {
		t.Fatalf("line width %d, want %d", len(line), RecordWidth)
	}
	if !strings.HasPrefix(line, "1:Alpha:") {
		t.Fatalf("line %q", line)
	}
}

func TestFieldsStickyError(t *testing.T) {
	f := NewFields(Record{"12", "oops", "34"})
	if f.Int() != 12 {
		t.Fatal("first field")
	}
	if f.Int() != 0 || f.Err() == nil {
		t.Fatal("bad field not flagged")
	}
	// Error sticks; later reads stay inert.
	if f.Int() != 0 {
		t.Fatal("read past error")
	}
	if !strings.Contains(f.Err().Error(), "oops") {
		t.Fatalf("error %v does not name the bad field", f.Err())
	}
}

func TestFieldsShortRecord(t *testing.T) {
	f := NewFields(Record{"1"})
	f.Int()
	f.Int()
	if f.Err() == nil {
		t.Fatal("short record not flagged")
	}
}

func TestFieldsDoneRejectsTrailingFields(t *testing.T) {
	f := NewFields(Record{"1", "stray"})
	f.Int()
	if err := f.Done(); err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("trailing field not flagged: %v", err)
	}

	f = NewFields(Record{"1"})
	f.Int()
	if err := f.Done(); err != nil {
		t.Fatalf("fully consumed record flagged: %v", err)
	}
}

func TestBuilderEscapesColons(t *testing.T) {
	rec := new(RecordBuilder).String("a:b").Int(7).Record()
	if rec[0] != "a;b" {
		t.Fatalf("colon not escaped: %q", rec[0])
	}
	var sb strings.Builder
	if err := WriteRecords(&sb, []Record{rec}); err != nil {
		t.Fatal(err)
	}
	back, err := ReadRecords(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(back[0]) != 2 {
		t.Fatalf("field count changed through the file: %q", back[0])
	}
}
