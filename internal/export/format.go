// Package export renders verified hours and the audit trail as CSV or XLSX
// files and records every export in the audit log.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"myimpact/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx, case-insensitively. Empty means csv.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", &model.InvalidArgumentError{Field: "format", Value: raw, Reason: "must be csv or xlsx"}
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Kind identifies what is being exported.
type Kind string

const (
	KindVerifiedLogs Kind = "verified-logs"
	KindAuditTrail   Kind = "audit-trail"
)

// FileName is the attachment name for an export, e.g. verified_logs_spring-2026.csv.
func FileName(kind Kind, termID string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", strings.ReplaceAll(string(kind), "-", "_"), termID, f)
}

// table is the format-neutral content of an export.
type table struct {
	sheet  string
	header []string
	rows   [][]any
}

func (t table) write(w io.Writer, f Format) error {
	if f == FormatXLSX {
		return t.writeXLSX(w)
	}
	return t.writeCSV(w)
}

func (t table) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = cell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t table) writeXLSX(w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return err
	}

	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(t.sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, row := range t.rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.sheet, addr, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
