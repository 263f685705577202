package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
)

func TestCatCommand(t *testing.T) {
	path := tfrecordtest.WriteFile(t, "data.tfrecord", tfrecordtest.Strings(nil, "ab", "cd", "ef", "gh"))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"hex", nil, "6162\n6364\n6566\n6768\n"},
		{"base64", []string{"--format", "base64"}, "YWI=\nY2Q=\nZWY=\nZ2g=\n"},
		{"raw", []string{"--format", "raw"}, "abcdefgh"},
		{"offset", []string{"--format", "raw", "--offset", "2"}, "efgh"},
		{"limit", []string{"--format", "raw", "--limit", "1"}, "ab"},
		{"offset and limit", []string{"--format", "raw", "--offset", "1", "--limit", "2"}, "cdef"},
		{"offset past end", []string{"--offset", "10"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"cat"}, tt.args...)
			out, err := execute(t, append(args, path)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "cat", "--format", "yaml", path)
		assert.ErrorContains(t, err, `unknown format "yaml"`)
	})
}

func TestCatCommand_CorruptTail(t *testing.T) {
	data := tfrecordtest.Strings(nil, "ok", "broken")
	path := tfrecordtest.WriteFile(t, "data.tfrecord", data[:len(data)-2])

	out, err := execute(t, "cat", "--format", "raw", path)
	assert.Error(t, err)
	assert.Equal(t, "ok", out)
}
