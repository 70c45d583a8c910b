package promptstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "custom_prompts.json")
	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestUpdateThenGetReturnsWrittenBody(t *testing.T) {
	store := newTestStore(t)

	updated, err := store.Update(domain.PromptProductDescription, "Custom", "Nouveau corps {product_name}")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := store.Get(domain.PromptProductDescription)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != updated.Name || got.Body != updated.Body {
		t.Fatalf("read-your-writes violated: %+v vs %+v", got, updated)
	}
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("nope", "x", "y")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Update(domain.PromptChainEvaluation, "Edited", "corps modifié"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := store.Reset(domain.PromptChainEvaluation); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	first, _ := store.Get(domain.PromptChainEvaluation)

	if err := store.Reset(domain.PromptChainEvaluation); err != nil {
		t.Fatalf("second Reset() error = %v", err)
	}
	second, _ := store.Get(domain.PromptChainEvaluation)

	if first.Body != second.Body {
		t.Fatalf("reset not idempotent: %q vs %q", first.Body, second.Body)
	}
	if first.Body == "corps modifié" {
		t.Fatalf("reset did not restore default body")
	}
}

func TestResetAllRestoresEveryDefault(t *testing.T) {
	store := newTestStore(t)
	defaults := defaultTemplates()

	for id := range defaults {
		if _, err := store.Update(id, "Edited", "corps modifié "+id); err != nil {
			t.Fatalf("Update(%s) error = %v", id, err)
		}
	}
	if err := store.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	for id, def := range defaults {
		got, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if got.Body != def.Body {
			t.Fatalf("template %s not restored to default", id)
		}
	}
}

func TestOverlaySurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom_prompts.json")
	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := store.Update(domain.PromptToneAnalysis, "Ton maison", "corps maison"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload New() error = %v", err)
	}
	got, err := reloaded.Get(domain.PromptToneAnalysis)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Body != "corps maison" {
		t.Fatalf("expected persisted overlay body, got %q", got.Body)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected overlay file on disk: %v", err)
	}
}

func TestRenderLeavesUnresolvedPlaceholders(t *testing.T) {
	tpl := domain.PromptTemplate{Body: "Produit {product_name} / {unknown}"}
	got := tpl.Render(map[string]string{"product_name": "Batterie"})
	if got != "Produit Batterie / {unknown}" {
		t.Fatalf("unexpected render: %q", got)
	}
}
