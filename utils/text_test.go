package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Acme Robotics", TitleCase("acme robotics"))
	assert.Equal(t, "Acme", TitleCase("ACME"))
	assert.Equal(t, "", TitleCase(""))
}
