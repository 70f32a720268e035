package leafwatch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := leafwatch.DefaultCatalog()

	assert.True(t, c.Has("Pageview"))
	assert.True(t, c.Has("Signup"))
	assert.True(t, c.Has("Open Discord"), "names nested two levels deep are found")
	assert.False(t, c.Has("PAGEVIEW"), "keys are not event names")
	assert.False(t, c.Has(""))

	key, ok := c.Key("Open GitHub")
	require.True(t, ok)
	assert.Equal(t, "MISCELLANEOUS.FOOTER.OPEN_GITHUB", key)

	names := c.Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "Switch notification tab")
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := leafwatch.ParseCatalog([]byte("A:\n  B: [1, 2]\n"))
	assert.ErrorContains(t, err, "A.B")

	_, err = leafwatch.ParseCatalog([]byte("A: ''\n"))
	assert.Error(t, err)

	_, err = leafwatch.ParseCatalog([]byte("A: [unclosed"))
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	c, err := leafwatch.LoadCatalog("")
	require.NoError(t, err)
	assert.True(t, c.Has("Pageview"))

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CUSTOM:\n  PING: Ping\n"), 0o644))

	c, err = leafwatch.LoadCatalog(path)
	require.NoError(t, err)
	assert.True(t, c.Has("Ping"))
	assert.False(t, c.Has("Pageview"))

	_, err = leafwatch.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
