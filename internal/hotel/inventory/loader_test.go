package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLayoutYAML = `
layout:
  name: Test Tower
  floors:
    - floor: 2
      rooms: 4
    - floor: 1
      rooms: 3
`

func TestLoadLayoutFromBytes(t *testing.T) {
	layout, err := LoadLayoutFromBytes([]byte(testLayoutYAML))
	require.NoError(t, err)
	assert.Equal(t, "Test Tower", layout.Name)
	assert.Equal(t, []int{3, 4}, layout.RoomsPerFloor)
	assert.Equal(t, 7, layout.TotalRooms())
}

func TestLoadLayoutFromBytes_Gap(t *testing.T) {
	_, err := LoadLayoutFromBytes([]byte(`
layout:
  floors:
    - floor: 1
      rooms: 3
    - floor: 3
      rooms: 3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without gaps")
}

func TestLoadLayoutFromBytes_InvalidRoomCount(t *testing.T) {
	_, err := LoadLayoutFromBytes([]byte(`
layout:
  floors:
    - floor: 1
      rooms: 0
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating layout")
}

func TestLoadLayoutFromBytes_BadYAML(t *testing.T) {
	_, err := LoadLayoutFromBytes([]byte("layout: [unterminated"))
	assert.Error(t, err)
}

func TestLoadLayoutFromBytes_NoFloors(t *testing.T) {
	_, err := LoadLayoutFromBytes([]byte("layout:\n  name: Empty\n"))
	assert.Error(t, err)
}

func TestLoadLayoutFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testLayoutYAML), 0644))

	layout, err := LoadLayoutFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, layout.RoomsPerFloor)

	_, err = LoadLayoutFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadLayoutFromFile_ShippedContent(t *testing.T) {
	layout, err := LoadLayoutFromFile(filepath.Join("..", "..", "..", "content", "layout.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout().RoomsPerFloor, layout.RoomsPerFloor)
}
