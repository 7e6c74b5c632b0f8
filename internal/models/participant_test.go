package models_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

func TestNewParticipant(t *testing.T) {
	t.Run("assigns the name-derived color", func(t *testing.T) {
		p := models.NewParticipant("c1", "alice")

		assert.Equal(t, "c1", p.ID)
		assert.Equal(t, "alice", p.Username)
		assert.Equal(t, models.ColorFor("alice"), p.Color)
		assert.WithinDuration(t, time.Now(), p.JoinedAt, time.Second)
	})
}

func TestColorFor(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, models.ColorFor("alice"), models.ColorFor("alice"))
	})

	t.Run("same name on different connections collides by design", func(t *testing.T) {
		a := models.NewParticipant("c1", "sam")
		b := models.NewParticipant("c2", "sam")

		assert.Equal(t, a.Color, b.Color)
	})

	t.Run("always produces a palette hex color", func(t *testing.T) {
		hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)
		for _, name := range []string{"", "alice", "bob", "a much longer display name"} {
			assert.Regexp(t, hex, models.ColorFor(name))
		}
	})
}
