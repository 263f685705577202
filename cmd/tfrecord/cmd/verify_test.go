package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

func TestVerifyCommand(t *testing.T) {
	data := tfrecordtest.Strings(nil, "a", "bc")

	t.Run("clean", func(t *testing.T) {
		path := tfrecordtest.WriteFile(t, "data.tfrecord", data)
		out, err := execute(t, "verify", path)
		require.NoError(t, err)
		assert.Equal(t, "ok: 2 records, 35 bytes, crc32c\n", out)
	})

	t.Run("flipped payload bit", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[tfrecordtest.FrameAt(17, 2).Payload[0]] ^= 0x01
		path := tfrecordtest.WriteFile(t, "data.tfrecord", bad)

		_, err := execute(t, "verify", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, tfrecord.ErrChecksumMismatch)
		assert.Contains(t, err.Error(), "after 1 records")

		// the same file still counts without validation
		out, err := execute(t, "count", path)
		require.NoError(t, err)
		assert.Equal(t, "2\n", out)
	})
}
