package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsure(t *testing.T) {
	n := NewMockNetwork(mockConfig())

	began, err := Ensure(n, "Net", "secret", "dev1")
	require.NoError(t, err)
	assert.True(t, began)
	assert.Equal(t, "dev1", n.Hostname())
	assert.Equal(t, "Net", n.SSID())

	// already right: nothing restarted
	began, err = Ensure(n, "Net", "secret", "dev1")
	require.NoError(t, err)
	assert.False(t, began)
	assert.Equal(t, 1, n.Begins())

	began, err = Ensure(n, "Net", "changed", "dev2")
	require.NoError(t, err)
	assert.True(t, began)
	assert.Equal(t, 2, n.Begins())
	assert.Equal(t, "dev2", n.Hostname())
}

func TestEnsure_BeginFails(t *testing.T) {
	n := NewMockNetwork(mockConfig())
	require.NoError(t, n.Begin("Net", "secret"))

	_, err := Ensure(n, "", "", "dev1")
	assert.Error(t, err)
}
