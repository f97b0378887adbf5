package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admstream/internal/adm"
	"admstream/internal/config"
)

func TestBuildWiresEveryObject(t *testing.T) {
	doc, err := Build(Options{
		Objects:       3,
		Duration:      5 * time.Second,
		BlockInterval: 2 * time.Second,
		ProgrammeEnd:  6 * time.Second,
		Language:      "en",
	})
	require.NoError(t, err)
	require.NoError(t, adm.Validate(doc))

	assert.Len(t, doc.Programmes(), 1)
	assert.Len(t, doc.Contents(), 1)
	assert.Len(t, doc.Objects(), 3)
	assert.Len(t, doc.TrackUIDs(), 3)

	end, ok := doc.Programmes()[0].End()
	require.True(t, ok)
	assert.Equal(t, 6*time.Second, end)

	for _, cf := range doc.ChannelFormats() {
		blocks := cf.BlockFormats()
		require.Len(t, blocks, 3)
		assert.Equal(t, 4*time.Second, blocks[2].Start())
		d, ok := blocks[2].Duration()
		require.True(t, ok)
		assert.Equal(t, time.Second, d, "last block is clipped to the object")
	}
}

func TestBuildRejectsEmptyScene(t *testing.T) {
	_, err := Build(Options{Duration: time.Second, BlockInterval: time.Second})
	assert.Error(t, err)
	_, err = Build(Options{Objects: 1, Duration: time.Second})
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := OptionsFromConfig(&cfg)
	assert.Equal(t, cfg.Scene.Objects, opts.Objects)
	assert.Equal(t, 5*time.Second, opts.Duration)
	assert.Equal(t, time.Second, opts.BlockInterval)
	assert.Zero(t, opts.ProgrammeEnd)
}

func TestWrapAzimuth(t *testing.T) {
	assert.InDelta(t, -90.0, wrapAzimuth(270), 1e-9)
	assert.InDelta(t, 180.0, wrapAzimuth(180), 1e-9)
}
