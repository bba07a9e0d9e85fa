package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	require.NotNil(t, log)
	_ = log.Sync()
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("chatty")
	assert.Error(t, err)
}
