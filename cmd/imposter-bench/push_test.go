package main

import (
	"strconv"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"
)

func TestRunVecMatchesBoxed(t *testing.T) {
	vec, err := runVec(100, 3, strconv.Itoa)
	require.NoError(t, err)

	boxed, err := runBoxed(100, 3, strconv.Itoa)
	require.NoError(t, err)

	// indices 99, 96, ..., 0 are removed
	require.Equal(t, 66, vec.Len)
	require.Equal(t, boxed.Len, vec.Len)
	require.Equal(t, 128, vec.Cap)
}

func TestPushCommandFlags(t *testing.T) {
	app := kingpin.New("test", "")
	cmd := addPushCommand(app)

	command, err := app.Parse([]string{"push", "--count", "10", "--type", "large", "--remove-every", "2"})
	require.NoError(t, err)
	require.Equal(t, cmd.name, command)
	require.Equal(t, 10, *cmd.count)
	require.Equal(t, "large", *cmd.valueType)

	require.NoError(t, cmd.run())
}

func TestCellCommand(t *testing.T) {
	app := kingpin.New("test", "")
	cmd := addCellCommand(app)

	_, err := app.Parse([]string{"cell", "--count", "10"})
	require.NoError(t, err)
	require.NoError(t, cmd.run())
}
