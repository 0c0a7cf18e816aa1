package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *DeckPolicy)
		wantErr string
	}{
		{
			name:   "default policy is valid",
			mutate: func(p *DeckPolicy) {},
		},
		{
			name:   "empty step sequences are valid",
			mutate: func(p *DeckPolicy) { p.LearningSteps = nil; p.RelearningSteps = nil },
		},
		{
			name:    "negative new per day",
			mutate:  func(p *DeckPolicy) { p.NewPerDay = -1 },
			wantErr: "new_per_day",
		},
		{
			name:    "zero learning step",
			mutate:  func(p *DeckPolicy) { p.LearningSteps = []int{0, 10} },
			wantErr: "learning_steps",
		},
		{
			name:    "unknown leech action",
			mutate:  func(p *DeckPolicy) { p.LeechAction = "delete" },
			wantErr: "leech_action",
		},
		{
			name:    "interval modifier must be positive",
			mutate:  func(p *DeckPolicy) { p.IntervalModifier = 0 },
			wantErr: "interval_modifier",
		},
		{
			name:    "new interval multiplier above one",
			mutate:  func(p *DeckPolicy) { p.NewIntervalMultiplier = 1.5 },
			wantErr: "new_interval_multiplier",
		},
		{
			name:    "easy bonus below one",
			mutate:  func(p *DeckPolicy) { p.EasyBonus = 0.9 },
			wantErr: "easy_bonus",
		},
		{
			name:    "unknown interleave mode",
			mutate:  func(p *DeckPolicy) { p.InterleaveMode = "shuffled" },
			wantErr: "interleave_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFileRepository_FindByDeck(t *testing.T) {
	t.Run("missing file yields the default policy", func(t *testing.T) {
		repo := NewFileRepository(t.TempDir())

		got, err := repo.FindByDeck(1)
		require.NoError(t, err)
		assert.Equal(t, Default(), got)
	})

	t.Run("round trips a saved policy", func(t *testing.T) {
		repo := NewFileRepository(filepath.Join(t.TempDir(), "policies"))

		p := Default()
		p.NewPerDay = 5
		p.LearningSteps = []int{5, 25}
		p.LeechAction = LeechTag
		p.BuryNewSiblings = true
		require.NoError(t, repo.Save(3, p))

		got, err := repo.FindByDeck(3)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "2.yml"), []byte("new_per_day: -3\n"), 0644))

		repo := NewFileRepository(dir)
		_, err := repo.FindByDeck(2)
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "4.yml"), []byte("{not yaml"), 0644))

		repo := NewFileRepository(dir)
		_, err := repo.FindByDeck(4)
		assert.Error(t, err)
	})
}

func TestFileRepository_Save(t *testing.T) {
	t.Run("rejects an invalid policy", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "policies")
		repo := NewFileRepository(dir)

		p := Default()
		p.MaxInterval = 0
		assert.Error(t, repo.Save(1, p))

		_, err := os.Stat(filepath.Join(dir, "1.yml"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates the directory on first save", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "policies")
		repo := NewFileRepository(dir)

		require.NoError(t, repo.Save(1, Default()))
		_, err := os.Stat(filepath.Join(dir, "1.yml"))
		assert.NoError(t, err)
	})
}
