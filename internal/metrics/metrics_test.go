package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordFrame(3, time.Millisecond)
	m.RecordPush(map[string]int{"object": 1}, 2)
	m.RecordRejection("protocol_violation")
	samples, err := m.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Nil(t, m.Registry())
}

func TestRecordAndSnapshot(t *testing.T) {
	m := New()
	m.RecordFrame(3, time.Millisecond)
	m.RecordFrame(1, 2*time.Millisecond)
	m.RecordPush(map[string]int{"object": 2, "channel_format": 1}, 4)
	m.RecordRejection("protocol_violation")

	assert.Equal(t, 2.0, m.Value("admstream_segmenter_frames_total", ""))
	assert.Equal(t, 4.0, m.Value("admstream_segmenter_blocks_copied_total", ""))
	assert.Equal(t, 2.0, m.Value("admstream_segmenter_frame_build_seconds", ""))
	assert.Equal(t, 1.0, m.Value("admstream_combiner_pushes_total", "status=accepted"))
	assert.Equal(t, 1.0, m.Value("admstream_combiner_pushes_total", "status=rejected"))
	assert.Equal(t, 1.0, m.Value("admstream_combiner_rejections_total", "kind=protocol_violation"))
	assert.Equal(t, 2.0, m.Value("admstream_combiner_elements_merged_total", "kind=object"))
	assert.Equal(t, 4.0, m.Value("admstream_combiner_blocks_merged_total", ""))

	samples, err := m.Snapshot()
	require.NoError(t, err)
	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}
