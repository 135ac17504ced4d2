// Copyright 2025 mfrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datautil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, files map[string]string) string {
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestUnzip(t *testing.T) {
	src := writeZip(t, map[string]string{
		"ml-100k/u.data": "1\t2\t3.0\t0\n",
		"ml-100k/README": "readme",
	})
	dst := t.TempDir()
	fileNames, err := unzip(src, dst)
	assert.NoError(t, err)
	assert.Len(t, fileNames, 2)
	data, err := os.ReadFile(filepath.Join(dst, "ml-100k", "u.data"))
	assert.NoError(t, err)
	assert.Equal(t, "1\t2\t3.0\t0\n", string(data))
}

func TestUnzipIllegalPath(t *testing.T) {
	src := writeZip(t, map[string]string{
		"../escape.txt": "boom",
	})
	_, err := unzip(src, t.TempDir())
	assert.Error(t, err)
}

func TestDownloadAndUnzip(t *testing.T) {
	if testing.Short() {
		t.Skip("skip network test in short mode")
	}
	path, err := DownloadAndUnzip("ml-100k")
	assert.NoError(t, err)
	assert.DirExists(t, path)
	assert.FileExists(t, filepath.Join(path, "u.data"))
}
