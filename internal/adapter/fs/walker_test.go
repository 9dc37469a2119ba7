package fs

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(mem, path, []byte(content), 0644))
	}
	return mem
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestWalker_IncludeExclude(t *testing.T) {
	mem := memTree(t, map[string]string{
		"/src/main.c":                  "int main(void) {",
		"/src/lib/util.h":              "int add(int a, int b);",
		"/src/web/app.js":              "function app() {",
		"/src/web/app.min.js":          "function a(){}",
		"/src/node_modules/dep/dep.js": "function dep() {",
		"/src/README.md":               "# readme",
	})

	w := NewWalker(
		[]string{"**/*.c", "**/*.h", "**/*.js"},
		[]string{"**/node_modules/**", "**/*.min.js"},
		WithFs(mem),
	)
	files, err := w.Walk("/src")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.Positive(t, f.Size)
	}
	assert.Equal(t, []string{"lib/util.h", "main.c", "web/app.js"}, relPaths(t, "/src", paths))
}

func TestWalker_DefaultIncludesEverything(t *testing.T) {
	mem := memTree(t, map[string]string{
		"/src/a.scss": "@mixin a {",
		"/src/b.txt":  "text",
	})

	files, err := NewWalker(nil, nil, WithFs(mem)).Walk("/src")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestWalker_MaxFileSize(t *testing.T) {
	mem := memTree(t, map[string]string{
		"/src/small.js": "x",
		"/src/large.js": "function large() { return 1 }",
	})

	files, err := NewWalker([]string{"**/*.js"}, nil, WithFs(mem), WithMaxFileSize(4)).Walk("/src")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join("/src", "small.js"), files[0].Path)
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil, WithFs(afero.NewMemMapFs())).Walk("/nowhere")
	assert.Error(t, err)
}

func TestReader_ReadFile(t *testing.T) {
	mem := memTree(t, map[string]string{"/src/a.php": "<?php\nfunction a() {"})

	got, err := NewReader(mem).ReadFile("/src/a.php")
	require.NoError(t, err)
	assert.Equal(t, "<?php\nfunction a() {", got)

	_, err = NewReader(mem).ReadFile("/src/missing.php")
	assert.Error(t, err)
}
