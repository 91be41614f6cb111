package recipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"Flour", "Sugar", "Egg"}, splitCSV("Flour, Sugar, Egg"))
	assert.Equal(t, []string{"Salt"}, splitCSV("Salt"))
	assert.Equal(t, []string{"Flour", "", "Egg"}, splitCSV("Flour,,Egg"))
	assert.Equal(t, []string{}, splitCSV(""))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"Mix", "Bake"}, splitLines("Mix\nBake"))
	assert.Equal(t, []string{"Mix", "", "Bake", ""}, splitLines("Mix\n\n  Bake \n"))
	assert.Equal(t, []string{}, splitLines(""))
}
