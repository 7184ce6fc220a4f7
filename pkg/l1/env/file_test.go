package env

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvName(t *testing.T) {
	require.Equal(t, "SCOPE_MQTT", EnvName("mqtt"))
	require.Equal(t, "SCOPE_PUBLISH_RATE", EnvName("publish-rate"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
station: bench
baud: 9600
interval: 5ms
publish-rate: 200
drop-sentinel: true
unknown: ignored
`), 0644))
	t.Setenv("SCOPE_PUBLISH_RATE", "50")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	station := fs.String("station", "default", "")
	baud := fs.Int("baud", 115200, "")
	interval := fs.Duration("interval", time.Millisecond, "")
	rate := fs.Float64("publish-rate", 0, "")
	drop := fs.Bool("drop-sentinel", false, "")
	port := fs.String("port", "/dev/ttyUSB0", "")
	require.NoError(t, fs.Parse([]string{"-baud", "57600"}))

	require.NoError(t, LoadFile(fs, path))
	require.Equal(t, "bench", *station)
	require.Equal(t, 57600, *baud)
	require.Equal(t, 5*time.Millisecond, *interval)
	require.Equal(t, float64(50), *rate)
	require.True(t, *drop)
	require.Equal(t, "/dev/ttyUSB0", *port)
}

func TestLoadFileErrors(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("baud", 115200, "")
	require.Error(t, LoadFile(fs, filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baud: fast\n"), 0644))
	require.Error(t, LoadFile(fs, path))
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
