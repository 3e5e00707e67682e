package pool

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogProgress_LogsAboutEveryTenth(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLogProgress(zerolog.New(&buf))

	lp.Start(100)
	for i := 0; i < 100; i++ {
		lp.Update(i)
	}
	lp.Finish()

	out := buf.String()
	assert.Equal(t, 10, strings.Count(out, "Scoring progress"))
	assert.Equal(t, 1, strings.Count(out, "Scoring finished"))
}

func TestLogProgress_StridedUpdates(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLogProgress(zerolog.New(&buf))

	// worker 0 of 4 only sees every fourth index
	lp.Start(8)
	for _, i := range []int{0, 4} {
		lp.Update(i)
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "Scoring progress"))
}
