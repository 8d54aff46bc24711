package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/process"
)

func TestReplayFlowchartSnapshot(t *testing.T) {
	n := 0
	doc := canvas.NewDocument(canvas.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("shape:%d", n)
	}))

	f, err := os.Open("testdata/flowchart.stream")
	require.NoError(t, err)
	defer f.Close()

	res, err := NewSession(doc, WithChunkSize(16)).Run(context.Background(), f, nil)
	require.NoError(t, err)
	assert.Equal(t, process.StateFinished, res.State)
	assert.Equal(t, "Two boxes and a note.", res.Thinking)
	assert.Equal(t, "Done.", res.Message)
	assert.Equal(t, 1, res.Stats.Malformed)
	assert.Equal(t, 1, res.Stats.Ignored)

	data, err := json.MarshalIndent(doc.Snapshot(), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "flowchart", append(data, '\n'))
}
