package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Format is the on-disk format of a machine store file.
type Format string

// Supported file formats, in lookup order.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var formats = []Format{FormatCSV, FormatXLSX}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileStore reads one file per machine from a directory: <dir>/<machine>.csv
// or <dir>/<machine>.xlsx. When both exist the CSV file wins.
type FileStore struct {
	dir   string
	sheet string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads every data row of the machine's file. The first row is the
// header; blank rows are skipped.
func (s *FileStore) Load(ctx context.Context, machine string) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validMachine(machine); err != nil {
		return nil, err
	}
	for _, format := range formats {
		path := s.path(machine, format)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		var (
			rows [][]string
			err  error
		)
		switch format {
		case FormatCSV:
			rows, err = readCSV(path)
		case FormatXLSX:
			rows, err = s.readXLSX(path)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", machine, err)
		}
		return toRecords(rows)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, machine)
}

// Machines lists machine names derived from the store file names.
func (s *FileStore) Machines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if _, err := ParseFormat(ext); err != nil || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Save writes records to the machine's file in the given format, replacing
// any existing file of that format. The header uses the station column names.
func (s *FileStore) Save(machine string, format Format, records []model.RawRecord) error {
	if err := validMachine(machine); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	path := s.path(machine, format)
	switch format {
	case FormatCSV:
		return writeCSVFile(path, records)
	case FormatXLSX:
		return writeXLSXFile(path, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (s *FileStore) path(machine string, format Format) string {
	return filepath.Join(s.dir, machine+"."+string(format))
}

func (s *FileStore) readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return rows, err
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	// Date and time cells come back in their display format; rewrite them
	// in layouts the normalizer accepts.
	cols := mapHeader(rows[0])
	for fl, layout := range map[field]string{fieldDate: time.DateOnly, fieldTime: time.TimeOnly} {
		c := cols[fl]
		if c < 0 {
			continue
		}
		for r := 1; r < len(rows); r++ {
			if c >= len(rows[r]) || strings.TrimSpace(rows[r][c]) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			t, ok, err := cellTime(f, sheet, cell, date1904)
			if err != nil {
				return nil, err
			}
			if ok {
				rows[r][c] = t.Format(layout)
			}
		}
	}
	return rows, nil
}

// cellTime decodes a numeric cell styled with a date or time number format.
// ok is false for text cells and for any other number format.
func cellTime(f *excelize.File, sheet, cell string, date1904 bool) (time.Time, bool, error) {
	idx, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return time.Time{}, false, err
	}
	style, err := f.GetStyle(idx)
	if err != nil || !isDateNumFmt(style) {
		return time.Time{}, false, nil
	}
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return time.Time{}, false, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	t, err := excelize.ExcelDateToTime(v, date1904)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

var numFmtLiteral = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// isDateNumFmt reports whether a style formats numbers as dates or times:
// built-in formats 14-22 and 45-47, or a custom code with date tokens.
func isDateNumFmt(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		code := strings.ToLower(numFmtLiteral.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(code, "ymdhs")
	}
	return (style.NumFmt >= 14 && style.NumFmt <= 22) || (style.NumFmt >= 45 && style.NumFmt <= 47)
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rows = append(rows, row)
	}
}

func toRecords(rows [][]string) ([]model.RawRecord, error) {
	out := make([]model.RawRecord, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	cols := mapHeader(rows[0])
	if !cols.found() {
		return nil, fmt.Errorf("%w: no known columns in header %v", ErrMalformed, rows[0])
	}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		out = append(out, cols.record(row))
	}
	return out, nil
}

func writeCSVFile(path string, records []model.RawRecord) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(fh)
	_ = w.Write(storeHeader)
	for _, r := range records {
		_ = w.Write(recordRow(r))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}

func writeXLSXFile(path string, records []model.RawRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := storeHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordRow(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func validMachine(machine string) error {
	if strings.TrimSpace(machine) == "" || machine == "." || machine == ".." ||
		strings.ContainsAny(machine, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidMachine, machine)
	}
	return nil
}
