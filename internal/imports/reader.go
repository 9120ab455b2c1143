package imports

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

// Format is the layout of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the reader from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type").
		WithDetails(map[string]string{"file": "use a .csv or .xlsx file"})
}

// readTable returns the header row and the data rows of the upload.
func readTable(format Format, body io.Reader) ([]string, [][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(body)
	case FormatXLSX:
		rows, err = readXLSX(body)
	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file could not be read").
			WithDetails(map[string]string{"file": err.Error()})
	}
	if len(rows) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty").
			WithDetails(map[string]string{"file": "a header row is required"})
	}
	return rows[0], rows[1:], nil
}

func readCSV(body io.Reader) ([][]string, error) {
	br := bufio.NewReader(body)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(first)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// sniffDelimiter prefers ';' when the header line has more of them than
// commas, which is what spreadsheets in comma-decimal locales write.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}

func readXLSX(body io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(body)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}
