package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	assert.Equal(t, Dark, Toggle(Light))
	assert.Equal(t, Light, Toggle(Dark))
}

func TestColoursDifferPerMode(t *testing.T) {
	light := Colours(Light)
	dark := Colours(Dark)
	assert.NotEqual(t, light.Text, dark.Text)
	assert.Equal(t, light.Reset, dark.Reset)
}
