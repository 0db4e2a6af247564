package consoletest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPort(t *testing.T) {
	p := New("ab")
	buf := make([]byte, 1)

	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "b", p.Remaining())

	p.Feed("c")
	assert.Equal(t, "bc", p.Remaining())

	_, _ = p.Write([]byte("x\r\nx"))
	assert.Equal(t, 2, p.Count("x"))

	p.Read(make([]byte, 8))
	_, err = p.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}
