package block

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONBlocks(t *testing.T) {
	dir := t.TempDir()

	single := `{"id": 1000, "name": "Sandstone", "solid": true, "unstable": true, "fall_sound": "effect/sand"}`
	list := `[
		{"id": 1001, "name": "Slab", "solid_faces": ["down"]},
		{"id": 1002, "name": "Iron Prop", "solid": true, "stabilization": 4}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sandstone.json"), []byte(single), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "misc.json"), []byte(list), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("не json"), 0644))

	require.NoError(t, LoadJSONBlocks(dir))

	assert.True(t, IsUnstable(1000))
	assert.True(t, FaceSolid(1000, vec.FaceUp))
	assert.Equal(t, "effect/sand", FallSoundOf(1000, "fallback"))

	assert.True(t, FaceSolid(1001, vec.FaceDown))
	assert.False(t, FaceSolid(1001, vec.FaceUp))
	assert.Equal(t, "fallback", FallSoundOf(1001, "fallback"))

	assert.Equal(t, 4, StabilizationRating(1002))
	assert.Equal(t, "Iron Prop", NameOf(1002))
}

func TestNewDefinitionBehavior_Rejects(t *testing.T) {
	_, err := NewDefinitionBehavior(Definition{ID: 5, Name: "Reserved"})
	assert.Error(t, err, "id ниже FirstCustomBlockID должен отклоняться")

	_, err = NewDefinitionBehavior(Definition{ID: 2000})
	assert.Error(t, err, "пустое имя должно отклоняться")

	_, err = NewDefinitionBehavior(Definition{ID: 2001, Name: "Bad", SolidFaces: []string{"sideways"}})
	assert.Error(t, err)

	_, err = NewDefinitionBehavior(Definition{ID: 2002, Name: "Neg", Stabilization: -1})
	assert.Error(t, err)
}

func TestUnknownBlock(t *testing.T) {
	assert.False(t, FaceSolid(65000, vec.FaceUp))
	assert.Equal(t, 0, StabilizationRating(65000))
	assert.False(t, IsUnstable(65000))
	assert.Equal(t, "unknown", NameOf(65000))
}
