package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

func TestExtractFrenchSpecSheet(t *testing.T) {
	extractor := NewSpecsExtractor()

	got := extractor.Extract("Capacité : 10000mAh\nPorts : USB-C + USB-A\nPoids : 180g")
	want := []domain.Spec{
		{Name: "Capacité", Value: "10000mAh"},
		{Name: "Ports", Value: "USB-C + USB-A"},
		{Name: "Poids", Value: "180g"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtractSeparatorVariants(t *testing.T) {
	extractor := NewSpecsExtractor()

	cases := []struct {
		name  string
		input string
		want  []domain.Spec
	}{
		{
			name:  "tabs",
			input: "Capacité\t10000mAh\nPoids\t180g",
			want:  []domain.Spec{{Name: "Capacité", Value: "10000mAh"}, {Name: "Poids", Value: "180g"}},
		},
		{
			name:  "multiple spaces",
			input: "Capacité    10000mAh",
			want:  []domain.Spec{{Name: "Capacité", Value: "10000mAh"}},
		},
		{
			name:  "dash with spaces",
			input: "Garantie - 2 ans",
			want:  []domain.Spec{{Name: "Garantie", Value: "2 ans"}},
		},
		{
			name:  "bullets and table pipes",
			input: "- Couleur : Noir\n| Matière : Aluminium |",
			want:  []domain.Spec{{Name: "Couleur", Value: "Noir"}, {Name: "Matière", Value: "Aluminium"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractor.Extract(tc.input); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Extract(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtractSkipsMalformedLines(t *testing.T) {
	extractor := NewSpecsExtractor()

	got := extractor.Extract("juste du texte sans paire\n\nCapacité : 10000mAh\n: valeur sans nom\nnom sans valeur :")
	want := []domain.Spec{{Name: "Capacité", Value: "10000mAh"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtractDeduplicatesKeepingLastValue(t *testing.T) {
	extractor := NewSpecsExtractor()

	got := extractor.Extract("Poids : 200g\nCapacité : 10000mAh\nPoids : 180g")
	want := []domain.Spec{
		{Name: "Poids", Value: "180g"},
		{Name: "Capacité", Value: "10000mAh"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtractIsDeterministicAndNonEmptyPairs(t *testing.T) {
	extractor := NewSpecsExtractor()
	input := "Capacité : 10000mAh\nbruit\nPorts\tUSB-C\nGarantie - 2 ans"

	first := extractor.Extract(input)
	second := extractor.Extract(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not deterministic: %+v vs %+v", first, second)
	}
	for _, spec := range first {
		if spec.Name == "" || spec.Value == "" {
			t.Fatalf("empty name or value in %+v", spec)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	if got := NewSpecsExtractor().Extract(""); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
