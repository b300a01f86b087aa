package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/palemoky/poetry-importer/internal/errors"
)

// CSV column headers
const (
	ColumnTitle    = "诗歌名称"
	ColumnDynasty  = "朝代"
	ColumnPoet     = "作者"
	ColumnContent  = "诗歌正文"
	ColumnCategory = "诗歌分类"
)

// RequiredColumns lists every column a row must carry to be imported.
var RequiredColumns = []string{ColumnTitle, ColumnDynasty, ColumnPoet, ColumnContent, ColumnCategory}

// Row is one CSV record keyed by header.
type Row struct {
	Line   int // 1-based line of the record in the file, header is line 1
	Fields map[string]string
	// Err is set when the record could not be parsed; Fields is then empty.
	Err error
}

// Get returns the value of column and whether the row has it.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// Title returns the title column, or "" when it is missing.
func (r Row) Title() string {
	return r.Fields[ColumnTitle]
}

// Validate reports the required columns the row lacks.
func (r Row) Validate() error {
	if r.Err != nil {
		return r.Err
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := r.Fields[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperrors.MalformedRow(r.Line, "missing column "+strings.Join(missing, ", "))
	}
	return nil
}

// LoadCSV reads all records of a UTF-8 CSV file with a header row.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads records from r. Records shorter than the header simply lack the
// trailing columns; extra fields are ignored. Quotes inside unquoted fields are
// kept as text. A record that still fails to parse becomes a Row carrying the
// error so the rest of the file is read.
func ReadCSV(r io.Reader) ([]Row, error) {
	br := stripUTF8BOM(bufio.NewReader(r))

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			rows = append(rows, parseErrorRow(pe))
			continue
		}

		line, _ := reader.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}

	return rows, nil
}

func parseErrorRow(pe *csv.ParseError) Row {
	return Row{
		Line:   pe.StartLine,
		Fields: map[string]string{},
		Err:    apperrors.MalformedRow(pe.StartLine, pe.Err.Error()),
	}
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
