package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/foxglove/mcap/go/mcap"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIwashi/cangps/pkg/cli"
)

const driveLog = `(10.000000) can0 18FEF100#0100020000000000
(10.500000) can0 0CF00400#000000401F000000
(11.000000) can0 18FF0300#0800000000F15365
(11.500000) can0 18EA00FE#0000000000000000
`

func run(t *testing.T, args ...string) error {
	t.Helper()
	c := cli.NewCLI("cangps", "test")
	c.AddCommands(NewCommand())
	c.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	return c.RunArgs(args)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drive.log")
	require.NoError(t, os.WriteFile(path, []byte(driveLog), 0o600))
	out := filepath.Join(dir, "drive.mcap")

	require.NoError(t, run(t, "convert", "--mcap-file", out, "--timestamps", "absolute", path))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	r, err := mcap.NewReader(f)
	require.NoError(t, err)
	info, err := r.Info()
	require.NoError(t, err)

	// vehicle speed, engine speed, satellites and GPS time.
	assert.Equal(t, uint64(4), info.Statistics.MessageCount)
	assert.Len(t, info.Channels, 4)
	assert.Equal(t, uint64(10e9), info.Statistics.MessageStartTime)
	assert.Equal(t, uint64(11e9), info.Statistics.MessageEndTime)
}

func TestConvertCommandRequiresOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.log")
	require.NoError(t, os.WriteFile(path, []byte(driveLog), 0o600))

	assert.Error(t, run(t, "convert", path))
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	require.NotNil(t, cmd)

	flag := cmd.Flags().Lookup("mcap-file")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
}
