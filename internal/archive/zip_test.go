package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestWriteKeepsOrderAndContent(t *testing.T) {
	entries := []Entry{
		{Name: "F2_RIPS.json", Data: []byte(`{"numFactura":"F2"}`)},
		{Name: "F1_RIPS.json", Data: []byte(`{"numFactura":"F1"}`)},
	}
	var buf bytes.Buffer
	if err := Write(&buf, entries, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != entries[i].Name {
			t.Errorf("entry %d = %s, want %s", i, f.Name, entries[i].Name)
		}
		if f.Method != zip.Deflate {
			t.Errorf("entry %s method = %d, want deflate", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, entries[i].Data) {
			t.Errorf("entry %s = %s", f.Name, data)
		}
	}
}

func TestWriteRejectsDuplicates(t *testing.T) {
	entries := []Entry{{Name: "a.json"}, {Name: "a.json"}}
	if err := Write(io.Discard, entries, time.Now()); err == nil {
		t.Fatal("expected duplicate entry error")
	}
}

func TestWriteRejectsPathNames(t *testing.T) {
	for _, name := range []string{"../evil_RIPS.json", "dir/a.json", `a\b.json`, "", ".."} {
		if err := Write(io.Discard, []Entry{{Name: name}}, time.Now()); err == nil {
			t.Errorf("entry %q accepted", name)
		}
	}
}
