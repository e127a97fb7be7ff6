package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/manifest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewClient_RequiresTopLayerAndOutputDir(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{TopLayer: "x"})
	assert.Error(t, err)
}

func TestCompose_SingleLayerNoIncludes(t *testing.T) {
	charm := t.TempDir()
	writeFile(t, filepath.Join(charm, "composer.yaml"), "name: my-charm\n")
	writeFile(t, filepath.Join(charm, "metadata.yaml"), "name: my-charm\n")
	writeFile(t, filepath.Join(charm, "README.md"), "hello\n")

	out := t.TempDir()

	client, err := NewClient(Config{TopLayer: charm, OutputDir: out})
	require.NoError(t, err)

	res := client.Compose(context.Background())
	require.True(t, res.IsOk(), "%v", res)

	result := res.Unwrap()
	assert.GreaterOrEqual(t, result.FilesWritten, 2)

	data, err := os.ReadFile(filepath.Join(out, "metadata.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "name: my-charm\n", string(data))

	_, err = os.Stat(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
}

func TestCompose_RerunWithoutForceFailsOnHandEditedFile(t *testing.T) {
	charm := t.TempDir()
	writeFile(t, filepath.Join(charm, "composer.yaml"), "name: my-charm\n")
	writeFile(t, filepath.Join(charm, "metadata.yaml"), "name: my-charm\n")

	out := t.TempDir()
	client, err := NewClient(Config{TopLayer: charm, OutputDir: out})
	require.NoError(t, err)

	res := client.Compose(context.Background())
	require.True(t, res.IsOk())

	writeFile(t, filepath.Join(out, "metadata.yaml"), "name: hand-edited\n")

	res = client.Compose(context.Background())
	require.True(t, res.IsErr())

	var um ErrUnexpectedModifications
	require.ErrorAs(t, res.UnwrapErr(), &um)
}

func TestCompose_RerunWithForceProceedsPastHandEdits(t *testing.T) {
	charm := t.TempDir()
	writeFile(t, filepath.Join(charm, "composer.yaml"), "name: my-charm\n")
	writeFile(t, filepath.Join(charm, "metadata.yaml"), "name: my-charm\n")

	out := t.TempDir()
	client, err := NewClient(Config{TopLayer: charm, OutputDir: out})
	require.NoError(t, err)

	res := client.Compose(context.Background())
	require.True(t, res.IsOk())

	writeFile(t, filepath.Join(out, "metadata.yaml"), "name: hand-edited\n")

	forced, err := NewClient(Config{TopLayer: charm, OutputDir: out, Force: true})
	require.NoError(t, err)

	res = forced.Compose(context.Background())
	require.True(t, res.IsOk())
}

func TestDoctor_ReportsNoManifestBeforeFirstCompose(t *testing.T) {
	charm := t.TempDir()
	writeFile(t, filepath.Join(charm, "composer.yaml"), "name: my-charm\n")
	writeFile(t, filepath.Join(charm, "metadata.yaml"), "name: my-charm\n")

	out := t.TempDir()
	writeFile(t, filepath.Join(out, "metadata.yaml"), "name: my-charm\n")

	client, err := NewClient(Config{TopLayer: charm, OutputDir: out})
	require.NoError(t, err)

	res := client.Doctor(context.Background())
	require.True(t, res.IsOk())
	assert.False(t, res.Unwrap().Healthy())
}
