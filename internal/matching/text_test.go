package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextRelevance(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		title       string
		description string
		want        float64
	}{
		{"all words match", "React developer", "Senior React Developer", "", 100},
		{"half match", "react angular", "React role", "", 50},
		{"short words dropped", "go dev", "Developer", "", 100},
		{"only short words", "a an to", "anything", "", 0},
		{"empty query", "", "Developer", "", 0},
		{"description counts", "kubernetes", "Engineer", "Runs Kubernetes clusters", 100},
		{"punctuation splits words", "node.js, express!", "Express API", "built on node", 100},
		{"no match", "chef", "React Developer", "Frontend", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TextRelevance(tt.query, tt.title, tt.description), 1e-9)
		})
	}
}

func TestTextRelevance_DuplicatesWeighMore(t *testing.T) {
	got := TextRelevance("react react vue", "React", "")
	assert.InDelta(t, 200.0/3.0, got, 1e-9)
}

func TestTextRelevance_Range(t *testing.T) {
	queries := []string{"", "x", "senior react developer remote", "python python python"}
	for _, q := range queries {
		got := TextRelevance(q, "Python developer", "remote")
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestTokenLength(t *testing.T) {
	assert.Equal(t, 0, tokenLength(""))
	assert.Equal(t, 2, tokenLength("go"))
	assert.Equal(t, 2, tokenLength("日本"))
	assert.Equal(t, 3, tokenLength("日本語"))
	assert.Equal(t, 2, tokenLength("🚀"))
}

func TestSkillTokens_CountsCharactersNotBytes(t *testing.T) {
	assert.Empty(t, skillTokens("日本, go"))
	assert.Equal(t, []string{"日本語", "rust"}, skillTokens("日本語, rust, c"))
	assert.Equal(t, []string{"🚀a"}, skillTokens("🚀a, 🚀"))
}
