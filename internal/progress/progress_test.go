package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepDescription(t *testing.T) {
	assert.Equal(t, "[cyan][1/4][reset] Importing tracklist...", StepDescription(1, 4, "Importing tracklist..."))
	assert.Equal(t, "[cyan][3/4][reset] Processing set...", StepDescription(3, 4, "Processing set..."))
}

func TestJobBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newBar(&buf, StepDescription(2, 4, "Processing set..."))
	require.NotNil(t, bar)
	assert.Equal(t, 100, bar.GetMax())

	require.NoError(t, bar.Set(42))
	assert.Contains(t, buf.String(), "2/4")
}

func TestDownloadBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newByteBar(&buf, 2048, "Downloading archive...")
	require.NotNil(t, bar)
	assert.EqualValues(t, 2048, bar.GetMax64())

	_, err := bar.Write(make([]byte, 1024))
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}
