package batchfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

const sampleCSV = `name,description,category,keywords,technical_specs
Batterie externe,Une batterie nomade,High-tech,"batterie, powerbank","{""Capacité"": ""20000 mAh"", ""Poids"": ""340 g""}"
Perceuse sans fil,,Bricolage,perceuse,Couple : 50 Nm; Batterie : 18 V
`

func TestParseCSV(t *testing.T) {
	products, err := New().ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	first := products[0]
	if first.Name != "Batterie externe" || first.Category != "High-tech" {
		t.Fatalf("unexpected product %+v", first)
	}
	if len(first.Keywords) != 2 || first.Keywords[1] != "powerbank" {
		t.Fatalf("keywords not split: %v", first.Keywords)
	}
	if len(first.TechnicalSpecs) != 2 || first.TechnicalSpecs[0].Name != "Capacité" {
		t.Fatalf("JSON specs not parsed: %+v", first.TechnicalSpecs)
	}

	second := products[1]
	if len(second.TechnicalSpecs) != 2 || second.TechnicalSpecs[0] != (domain.Spec{Name: "Couple", Value: "50 Nm"}) {
		t.Fatalf("pair specs not parsed: %+v", second.TechnicalSpecs)
	}
}

func TestParseCSVRequiresNameColumn(t *testing.T) {
	_, err := New().ParseCSV(strings.NewReader("description\nfoo\n"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseCSVRejectsRowWithoutName(t *testing.T) {
	_, err := New().ParseCSV(strings.NewReader("name,category\n,Bricolage\n"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("error should name the row, got %v", err)
	}
}

func TestParseXLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]string{"name", "keywords"})
	_ = f.SetSheetRow(sheet, "A2", &[]string{"Batterie externe", "batterie, usb-c"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	products, err := New().Parse("produits.xlsx", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(products) != 1 || products[0].Name != "Batterie externe" || len(products[0].Keywords) != 2 {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := New().Parse("produits.pdf", strings.NewReader(""))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
