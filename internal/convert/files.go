package convert

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/ripsconv/internal/config"
	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/normalize"
	"github.com/gyeh/ripsconv/internal/parquetio"
	"github.com/gyeh/ripsconv/internal/workbook"
)

// readInvoice decodes one JSON document and hashes its bytes. Any failure,
// including an unreadable file, is a MalformedInputError for path.
func readInvoice(path string) (*model.Invoice, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &model.MalformedInputError{Path: path, Err: err}
	}
	inv, err := model.DecodeInvoice(bytes.NewReader(data))
	if err != nil {
		return nil, "", &model.MalformedInputError{Path: path, Err: err}
	}
	return inv, normalize.Hash(data), nil
}

func readDataset(path, format string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.MalformedInputError{Path: path, Err: err}
	}
	defer f.Close()

	if format == config.FormatParquet {
		st, err := f.Stat()
		if err != nil {
			return nil, &model.MalformedInputError{Path: path, Err: err}
		}
		return parquetio.Read(f, st.Size(), path)
	}
	return workbook.Read(f, path)
}

// writeFile writes data next to path and renames it into place, so a failed
// write leaves no partial output.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
