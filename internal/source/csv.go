package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadCSVFile reads every data row of the CSV file at path. The first row
// is the header. A missing file is reported as ErrNotFound.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csv %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f, filepath.Base(path))
}

// ReadCSV reads rows from r. name labels each row's Origin.
// Short rows simply lack the trailing fields; extra cells beyond the
// header are kept under an empty name.
func ReadCSV(r io.Reader, name string) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv %s: read header: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for i := 1; ; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("csv %s: row %d: %w", name, i, err)
		}
		if blank(rec) {
			continue
		}

		line, _ := cr.FieldPos(0)
		row := Row{
			Index:  i,
			Origin: fmt.Sprintf("%s:%d", name, line),
			Fields: make([]Field, 0, len(rec)),
		}
		for col, val := range rec {
			fieldName := ""
			if col < len(header) {
				fieldName = header[col]
			}
			row.Fields = append(row.Fields, Field{Name: fieldName, Value: val})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
