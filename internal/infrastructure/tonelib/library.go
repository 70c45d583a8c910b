package tonelib

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// Library holds the predefined tones, optionally extended or
// overridden by a YAML file.
type Library struct {
	tones map[string]domain.ToneDefinition
}

type yamlTone struct {
	Label        string `yaml:"label"`
	Instructions string `yaml:"instructions"`
}

func builtinTones() map[string]domain.ToneDefinition {
	return map[string]domain.ToneDefinition{
		"professional": {
			ID:           "professional",
			Label:        "Professionnel",
			Instructions: "Adopte un ton professionnel et formel. Vocabulaire précis, phrases structurées, pas de familiarité.",
		},
		"casual": {
			ID:           "casual",
			Label:        "Décontracté",
			Instructions: "Adopte un ton décontracté et amical. Tutoiement possible, phrases courtes, vocabulaire du quotidien.",
		},
		"enthusiastic": {
			ID:           "enthusiastic",
			Label:        "Enthousiaste",
			Instructions: "Adopte un ton enthousiaste et dynamique. Mets l'accent sur l'envie et le plaisir d'utilisation.",
		},
		"luxury": {
			ID:           "luxury",
			Label:        "Luxe",
			Instructions: "Adopte un ton luxueux et élégant. Vocabulaire raffiné, évocation de l'exclusivité et du savoir-faire.",
		},
		"technical": {
			ID:           "technical",
			Label:        "Technique",
			Instructions: "Adopte un ton technique et précis. Chiffres, normes et caractéristiques vérifiables en premier.",
		},
		"educational": {
			ID:           "educational",
			Label:        "Pédagogique",
			Instructions: "Adopte un ton pédagogique et explicatif. Explique les termes techniques et accompagne le lecteur.",
		},
	}
}

// Load builds the library. An empty path keeps the builtin set; a
// missing file at a given path is an error so misconfiguration is
// visible at startup.
func Load(path string) (*Library, error) {
	tones := builtinTones()
	if path == "" {
		return &Library{tones: tones}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tones file: %w", err)
	}

	var parsed map[string]yamlTone
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse tones file: %w", err)
	}

	for id, tone := range parsed {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || strings.TrimSpace(tone.Instructions) == "" {
			return nil, fmt.Errorf("tones file: %w", errors.New("every tone needs an id and instructions"))
		}
		label := tone.Label
		if label == "" {
			label = id
		}
		tones[id] = domain.ToneDefinition{
			ID:           id,
			Label:        label,
			Instructions: tone.Instructions,
		}
	}
	return &Library{tones: tones}, nil
}

func (l *Library) Instructions(tone string) (domain.ToneDefinition, bool) {
	def, ok := l.tones[strings.ToLower(strings.TrimSpace(tone))]
	return def, ok
}

func (l *Library) All() []domain.ToneDefinition {
	out := make([]domain.ToneDefinition, 0, len(l.tones))
	for _, def := range l.tones {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
