package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDirWithFiles creates a temporary directory containing an empty file for each
// of the names provided, returning the directory and the full paths of the files.
func TempDirWithFiles(t *testing.T, files []string) (string, []string) {
	dirPath := t.TempDir()
	filePaths := make([]string, 0, len(files))
	for _, filename := range files {
		file, err := os.CreateTemp(dirPath, "*"+filename)
		require.NoError(t, err, "failed to create temporary file in temporary dir")
		require.NoError(t, file.Close())
		filePaths = append(filePaths, file.Name())
	}

	require.Len(t, filePaths, len(files), "Expected file paths recorded to match length of requested files")
	return dirPath, filePaths
}

// FakeBinary writes an executable shell script to a temporary directory, returning
// its path. Invocations append their arguments to 'args.log' beside the script.
func FakeBinary(t *testing.T, name string, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho \"$@\" >> " + filepath.Join(dir, "args.log") + "\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}
