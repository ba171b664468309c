// Package importer bulk-loads draft articles from tabular uploads. Every
// valid row goes through the normal create transition, so imported articles
// enter the workflow as drafts owned by the importing principal.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/lifecycle"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not CSV or XLSX.
// It is a validation failure: callers classify it with errors.Is on either
// sentinel.
var ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", domain.ErrValidation)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Service ingests article rows through the lifecycle engine.
type Service struct {
	lifecycle *lifecycle.Service
}

// NewService creates a new import service.
func NewService(lc *lifecycle.Service) *Service {
	return &Service{lifecycle: lc}
}

// Request describes an import upload.
type Request struct {
	FileName string
	Data     io.Reader
}

// RowError records why a row was skipped.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// Summary returns import metrics.
type Summary struct {
	TotalRows int        `json:"totalRows"`
	Created   int        `json:"created"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Import parses the upload and creates one draft article per valid row.
// Expected columns: title (required), content, tags (comma-delimited within
// the cell). A malformed row is recorded and skipped, never aborting the rest
// of the batch.
func (s *Service) Import(ctx context.Context, p domain.Principal, req Request) (Summary, error) {
	summary := Summary{Errors: []RowError{}}

	if req.Data == nil {
		return summary, fmt.Errorf("%w: data reader is required", domain.ErrValidation)
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("read upload: %w", err)
	}
	if len(payload) == 0 {
		return summary, fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}

	records, err := parseTable(req.FileName, payload)
	if err != nil {
		return summary, err
	}
	if len(records) == 0 {
		return summary, fmt.Errorf("%w: no rows found in file", domain.ErrValidation)
	}

	columns := columnIndex(records[0])
	titleCol, ok := columns["title"]
	if !ok {
		return summary, fmt.Errorf("%w: missing title column", domain.ErrValidation)
	}
	contentCol, hasContent := columns["content"]
	tagsCol, hasTags := columns["tags"]

	for i, row := range records[1:] {
		rowNumber := i + 2 // 1-based, counting the header
		if emptyRow(row) {
			continue
		}
		summary.TotalRows++

		create := lifecycle.CreateRequest{Title: cell(row, titleCol)}
		if hasContent {
			create.Content = cell(row, contentCol)
		}
		if hasTags {
			create.Tags = cell(row, tagsCol)
		}

		if _, err := s.lifecycle.Create(ctx, p, create); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{RowNumber: rowNumber, Message: err.Error()})
			continue
		}
		summary.Created++
	}

	return summary, nil
}

func parseTable(fileName string, payload []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func parseExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows from xlsx: %w", err)
	}
	return rows, nil
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, seen := columns[name]; !seen {
			columns[name] = idx
		}
	}
	return columns
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
