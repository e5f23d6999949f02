package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_OptionWithInstructions(t *testing.T) {
	c := classify("3 try the other file")
	assert.Equal(t, kindOptionWithInstructions, c.kind)
	assert.Equal(t, 3, c.option)
	assert.Equal(t, "try the other file", c.instructions)
}

func TestClassify_YesWithInstructions(t *testing.T) {
	c := classify("yes but first check the tests")
	assert.Equal(t, kindOptionWithInstructions, c.kind)
	assert.Equal(t, 1, c.option)
}

func TestClassify_NoWithInstructions(t *testing.T) {
	c := classify("no do something else instead")
	assert.Equal(t, kindOptionWithInstructions, c.kind)
	assert.Equal(t, 3, c.option)
}

func TestClassify_SimpleOption(t *testing.T) {
	c := classify("2")
	assert.Equal(t, kindSimpleOption, c.kind)
	assert.Equal(t, "2", c.digit)

	c = classify("yes")
	assert.Equal(t, kindSimpleOption, c.kind)
	assert.Equal(t, "1", c.digit)

	c = classify("no")
	assert.Equal(t, kindSimpleOption, c.kind)
	assert.Equal(t, "3", c.digit)
}

func TestClassify_FreeText(t *testing.T) {
	c := classify("fix thing")
	assert.Equal(t, kindFreeText, c.kind)
}

func TestIsPlainRejection(t *testing.T) {
	assert.True(t, isPlainRejection("3"))
	assert.True(t, isPlainRejection("n"))
	assert.True(t, isPlainRejection("NO"))
	assert.False(t, isPlainRejection("3 with text"))
	assert.False(t, isPlainRejection("2"))
}
