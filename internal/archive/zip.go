// Package archive packages output documents into a ZIP file.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultName is the name of the EVENT-mode bundle.
const DefaultName = "RIPS_Evento_JSONs.zip"

// Entry is one file stored in the archive.
type Entry struct {
	Name string
	Data []byte
}

// ValidName reports whether name is a plain file name that extracts inside
// the target directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return false
	}
	return true
}

// Write stores entries in order with deflate compression. Duplicate names
// and names that are not plain file names are rejected.
func Write(w io.Writer, entries []Entry, modified time.Time) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !ValidName(e.Name) {
			zw.Close()
			return fmt.Errorf("invalid archive entry name %q", e.Name)
		}
		if _, ok := seen[e.Name]; ok {
			zw.Close()
			return fmt.Errorf("duplicate archive entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("create entry %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			zw.Close()
			return fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
