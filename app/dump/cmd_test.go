package dump

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIwashi/cangps/pkg/can"
	"github.com/BIwashi/cangps/pkg/cli"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	c := cli.NewCLI("cangps", "test")
	c.AddCommands(NewCommand())
	c.SetOutput(&stdout, &bytes.Buffer{})
	err := c.RunArgs(args)
	return stdout.String(), err
}

// writeBinary writes one short block holding two records.
func writeBinary(t *testing.T, path string) {
	t.Helper()
	block := make([]byte, 4+2*can.RecordSize)
	rec := block[4:]
	rec[0] = 1
	binary.LittleEndian.PutUint32(rec[1:5], 1700000000)
	binary.LittleEndian.PutUint32(rec[9:13], 0x18FEF100)
	binary.LittleEndian.PutUint32(rec[13:17], 250000|8<<24)
	copy(rec[17:25], []byte{0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00})

	rec = block[4+can.RecordSize:]
	binary.LittleEndian.PutUint32(rec[1:5], 1700000001)
	binary.LittleEndian.PutUint32(rec[9:13], 0x18FF0300)
	rec[17] = 0x08
	require.NoError(t, os.WriteFile(path, block, 0o600))
}

func TestDumpCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.bin")
	writeBinary(t, path)

	stdout, err := run(t, "dump", path)
	require.NoError(t, err)

	assert.Equal(t,
		"(1700000000.250000) can1 18FEF100#0100020000000000\n"+
			"(1700000001.000000) can0 18FF0300#0800000000000000\n",
		stdout)
}

func TestDumpCommandOutFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drive.bin")
	writeBinary(t, path)
	out := filepath.Join(dir, "drive.log")

	stdout, err := run(t, "dump", "--out", out, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	// The dumped log parses back to the same frames.
	for _, line := range lines {
		_, err := can.ParseLine(line)
		assert.NoError(t, err, line)
	}
}
