package promptstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// Store keeps prompt templates in memory with compiled-in defaults.
// User edits are persisted as a JSON overlay file; reset drops the
// overlay entry and falls back to the default body.
type Store struct {
	path string

	mu        sync.RWMutex
	defaults  map[string]domain.PromptTemplate
	templates map[string]domain.PromptTemplate
}

func New(path string) (*Store, error) {
	s := &Store{
		path:      path,
		defaults:  defaultTemplates(),
		templates: defaultTemplates(),
	}
	if err := s.loadOverlay(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Get(id string) (domain.PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[id]
	if !ok {
		return domain.PromptTemplate{}, domain.WrapError(domain.ErrNotFound, "get prompt template", errors.New("unknown id: "+id))
	}
	return tpl, nil
}

func (s *Store) GetAll() []domain.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PromptTemplate, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Update(id, name, body string) (domain.PromptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return domain.PromptTemplate{}, domain.WrapError(domain.ErrNotFound, "update prompt template", errors.New("unknown id: "+id))
	}

	tpl := domain.PromptTemplate{ID: id, Name: name, Body: body}
	s.templates[id] = tpl
	if err := s.persistLocked(); err != nil {
		return domain.PromptTemplate{}, err
	}
	return tpl, nil
}

func (s *Store) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.defaults[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "reset prompt template", errors.New("unknown id: "+id))
	}
	s.templates[id] = def
	return s.persistLocked()
}

func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates = defaultTemplates()
	return s.persistLocked()
}

func (s *Store) loadOverlay() error {
	if s.path == "" {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read custom prompts: %w", err)
	}

	var overlay map[string]domain.PromptTemplate
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse custom prompts: %w", err)
	}

	// Overlay entries for unknown ids are ignored rather than kept,
	// the set of template ids is fixed at compile time.
	for id, tpl := range overlay {
		if _, ok := s.defaults[id]; !ok {
			continue
		}
		tpl.ID = id
		s.templates[id] = tpl
	}
	return nil
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	overlay := make(map[string]domain.PromptTemplate)
	for id, tpl := range s.templates {
		if def := s.defaults[id]; def.Body != tpl.Body || def.Name != tpl.Name {
			overlay[id] = tpl
		}
	}

	payload, err := json.MarshalIndent(overlay, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal custom prompts: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prompts dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write custom prompts: %w", err)
	}
	return nil
}
