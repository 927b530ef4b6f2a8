package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	enc "github.com/MrJamesThe3rd/ebill/internal/encoding"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

const (
	colName   = "customer_name"
	colType   = "customer_type"
	colUnits  = "units"
	colStatus = "status"
)

var ErrMissingColumns = errors.New("missing required columns: customer_name, customer_type, units")

// Reading is one meter reading of an upload, with the file line it came from.
type Reading struct {
	Line   int
	Params bill.GenerateParams
}

// RowError reports a rejected row by its 1-based line number.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Parse reads a readings CSV. The encoding and the delimiter (',' or ';')
// are detected from the content and headers match case-insensitively in any
// order. Every invalid row is reported in the returned error.
func Parse(r io.Reader) ([]Reading, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	comma, err := detectDelimiter(br)
	if err != nil {
		return nil, err
	}

	slog.Debug("parsing readings", "charset", charset, "delimiter", string(comma))

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumns
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, ok := indexColumns(header)
	if !ok {
		return nil, ErrMissingColumns
	}

	var (
		readings []Reading
		rowErrs  []error
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		reading, err := parseRow(cols, row, comma)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}

		reading.Line = line
		readings = append(readings, reading)
	}

	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}

	return readings, nil
}

// detectDelimiter picks ';' when the header line has more semicolons than
// commas.
func detectDelimiter(br *bufio.Reader) (rune, error) {
	line, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("peek header: %w", err)
	}

	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';', nil
	}

	return ',', nil
}

// columns maps the known header names to their index.
type columns map[string]int

func indexColumns(header []string) (columns, bool) {
	cols := make(columns)

	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, seen := cols[name]; name != "" && !seen {
			cols[name] = i
		}
	}

	for _, required := range []string{colName, colType, colUnits} {
		if _, ok := cols[required]; !ok {
			return nil, false
		}
	}

	return cols, true
}

func (c columns) value(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseRow(cols columns, row []string, comma rune) (Reading, error) {
	name := cols.value(row, colName)
	if name == "" {
		return Reading{}, bill.ErrMissingCustomerName
	}

	status := bill.StatusUnpaid

	if s := cols.value(row, colStatus); s != "" {
		parsed, err := bill.ParseStatus(s)
		if err != nil {
			return Reading{}, fmt.Errorf("%w %q", err, s)
		}

		status = parsed
	}

	return Reading{
		Params: bill.GenerateParams{
			CustomerName: name,
			CustomerType: tariff.ParseCustomerType(cols.value(row, colType)),
			Units:        parseUnits(cols.value(row, colUnits), comma == ';'),
			Status:       status,
		},
	}, nil
}
