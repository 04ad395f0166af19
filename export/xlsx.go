// Package export writes property workbooks and checks exported files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/barretodotcom/inmocrm/codes"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/xuri/excelize/v2"
)

const PropertySheet = "Propiedades"

var PropertyHeader = []string{"ID", "Código", "Título", "Tipo", "Estado", "Precio", "Creado"}

func WriteProperties(w io.Writer, props []db.Property) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", PropertySheet)

	header := make([]any, len(PropertyHeader))
	for i, h := range PropertyHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(PropertySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range props {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		code := ""
		if p.Code != nil {
			code = *p.Code
		}
		row := []any{p.ID, code, p.Title, p.Type, p.Status, p.Price.StringFixed(2), p.CreatedAt.UTC().Format("2006-01-02")}
		if err := f.SetSheetRow(PropertySheet, cell, &row); err != nil {
			return fmt.Errorf("write property %d: %w", p.ID, err)
		}
	}
	return f.Write(w)
}

type Problem struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Verification struct {
	Rows       int       `json:"rows"`
	WithCode   int       `json:"withCode"`
	Duplicates []string  `json:"duplicates"`
	Problems   []Problem `json:"problems"`
}

func (v Verification) OK() bool {
	return len(v.Problems) == 0 && len(v.Duplicates) == 0
}

// VerifyProperties reads a workbook produced by WriteProperties (or edited
// by hand) and reports rows an import would reject.
func VerifyProperties(r io.Reader) (*Verification, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(PropertySheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", PropertySheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", PropertySheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	v := &Verification{}
	seen := map[string]int{}
	for i, row := range rows[1:] {
		n := i + 2
		if blank(row) {
			continue
		}
		v.Rows++
		if _, err := strconv.ParseInt(cell(row, 0), 10, 64); err != nil {
			v.Problems = append(v.Problems, Problem{Row: n, Message: "invalid id " + strconv.Quote(cell(row, 0))})
		}
		if strings.TrimSpace(cell(row, 2)) == "" {
			v.Problems = append(v.Problems, Problem{Row: n, Message: "missing title"})
		}
		code := strings.TrimSpace(cell(row, 1))
		if code == "" {
			continue
		}
		if _, _, err := codes.Parse(code); err != nil {
			v.Problems = append(v.Problems, Problem{Row: n, Message: err.Error()})
			continue
		}
		v.WithCode++
		seen[code]++
		if seen[code] == 2 {
			v.Duplicates = append(v.Duplicates, code)
		}
	}
	return v, nil
}

func checkHeader(got []string) error {
	if len(got) < len(PropertyHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(got), len(PropertyHeader))
	}
	for i, h := range PropertyHeader {
		if strings.TrimSpace(got[i]) != h {
			return fmt.Errorf("header column %d is %q, want %q", i+1, got[i], h)
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
