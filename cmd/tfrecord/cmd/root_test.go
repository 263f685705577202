package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
	"github.com/ssargent/tfrecord/pkg/checksum"
	"github.com/ssargent/tfrecord/pkg/config"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

// execute runs the command tree with an isolated home directory
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestCountCommand(t *testing.T) {
	path := tfrecordtest.WriteFile(t, "data.tfrecord", tfrecordtest.Strings(nil, "a", "b", "c"))

	out, err := execute(t, "count", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	t.Run("validated", func(t *testing.T) {
		out, err := execute(t, "count", "--validate", path)
		require.NoError(t, err)
		assert.Equal(t, "3\n", out)
	})

	t.Run("truncated", func(t *testing.T) {
		data := tfrecordtest.Strings(nil, "hello")
		truncated := tfrecordtest.WriteFile(t, "short.tfrecord", data[:len(data)-6])

		_, err := execute(t, "count", truncated)
		require.Error(t, err)
		assert.ErrorIs(t, err, tfrecord.ErrCorruptContainer)
		assert.Contains(t, err.Error(), "failed to read the record")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "count", filepath.Join(t.TempDir(), "nope"))
		var ioErr *tfrecord.IOError
		assert.ErrorAs(t, err, &ioErr)
	})
}

func TestChecksumFlag(t *testing.T) {
	path := tfrecordtest.WriteFile(t, "ieee.rec", tfrecordtest.Strings(checksum.CRC32IEEE, "x", "y"))

	out, err := execute(t, "count", "--validate", "--checksum", "crc32", path)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = execute(t, "count", "--validate", path)
	assert.ErrorIs(t, err, tfrecord.ErrChecksumMismatch)

	_, err = execute(t, "count", "--checksum", "md5", path)
	assert.ErrorIs(t, err, checksum.ErrUnknownChecksum)
}

func TestConfigFileSettings(t *testing.T) {
	dir := t.TempDir()
	path := tfrecordtest.WriteFile(t, "murmur.rec", tfrecordtest.Strings(checksum.Murmur3, "one", "two"))

	cfg := config.DefaultConfig()
	cfg.Reader.ValidateIntegrity = true
	cfg.Reader.Checksum = "murmur3"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	out, err := execute(t, "count", "--config", configPath, path)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	// flags take precedence over the file
	_, err = execute(t, "count", "--config", configPath, "--checksum", "crc32c", path)
	assert.ErrorIs(t, err, tfrecord.ErrChecksumMismatch)

	_, err = execute(t, "count", "--config", filepath.Join(dir, "missing.yaml"), path)
	assert.ErrorContains(t, err, "config file does not exist")
}

func TestLogLevelFlag(t *testing.T) {
	path := tfrecordtest.WriteFile(t, "data.tfrecord", tfrecordtest.Strings(nil, "a"))

	_, err := execute(t, "count", "--log-level", "debug", path)
	assert.NoError(t, err)

	_, err = execute(t, "count", "--log-level", "loud", path)
	assert.ErrorContains(t, err, "invalid logging.level")
}

func TestSettingsReaderConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reader.ValidateIntegrity = true
	cfg.Reader.Checksum = "xxhash"
	cfg.Reader.MaxRecordSize = 1 << 20
	s := &settings{config: cfg}

	rc, err := s.readerConfig("f.rec")
	require.NoError(t, err)
	assert.Equal(t, "f.rec", rc.FilePath)
	assert.True(t, rc.ValidateIntegrity)
	assert.Equal(t, "xxhash", rc.Checksum.Name())
	assert.Equal(t, 64*1024, rc.BufferSize)
	assert.Equal(t, uint64(1<<20), rc.MaxRecordSize)
}

func TestMain(m *testing.M) {
	// keep developer environment overrides out of the tests
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, config.EnvPrefix) {
			os.Unsetenv(name)
		}
	}
	os.Exit(m.Run())
}
