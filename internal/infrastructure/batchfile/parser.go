package batchfile

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// Parser reads batch product files. CSV and XLSX share the same
// column contract: a required "name" column plus optional description,
// category, keywords and technical_specs columns.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse routes on the file extension.
func (p *Parser) Parse(filename string, r io.Reader) ([]domain.ProductInfo, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return p.ParseCSV(r)
	case ".xlsx":
		return p.ParseXLSX(r)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch file", fmt.Errorf("unsupported file type %q", filepath.Ext(filename)))
	}
}

func (p *Parser) ParseCSV(r io.Reader) ([]domain.ProductInfo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "parse batch csv", err)
	}
	return p.fromRows(records)
}

func (p *Parser) ParseXLSX(r io.Reader) ([]domain.ProductInfo, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "parse batch xlsx", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch xlsx", errors.New("workbook has no sheet"))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "parse batch xlsx", err)
	}
	return p.fromRows(rows)
}

func (p *Parser) fromRows(rows [][]string) ([]domain.ProductInfo, error) {
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch file", errors.New("empty file"))
	}

	columns := map[string]int{}
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch file", errors.New(`missing required column "name"`))
	}

	products := make([]domain.ProductInfo, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		name := cell(row, columns, "name")
		if name == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch file", fmt.Errorf("row %d has no product name", i+2))
		}

		products = append(products, domain.ProductInfo{
			Name:           name,
			Description:    cell(row, columns, "description"),
			Category:       cell(row, columns, "category"),
			Keywords:       splitKeywords(cell(row, columns, "keywords")),
			TechnicalSpecs: parseSpecsCell(cell(row, columns, "technical_specs")),
		})
	}
	if len(products) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse batch file", errors.New("no product row"))
	}
	return products, nil
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, keyword := range strings.Split(raw, ",") {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			out = append(out, keyword)
		}
	}
	return out
}

// parseSpecsCell accepts either a JSON object or "name: value" pairs
// separated by semicolons or newlines.
func parseSpecsCell(raw string) []domain.Spec {
	if raw == "" {
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal([]byte(raw), &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for key := range asMap {
			keys = append(keys, key)
		}
		// JSON objects carry no order, sort for determinism.
		sort.Strings(keys)
		specs := make([]domain.Spec, 0, len(keys))
		for _, key := range keys {
			specs = append(specs, domain.Spec{Name: key, Value: asMap[key]})
		}
		return specs
	}

	var specs []domain.Spec
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '\n' }) {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" && value != "" {
			specs = append(specs, domain.Spec{Name: name, Value: value})
		}
	}
	return specs
}
