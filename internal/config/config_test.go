package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/config"
)

func TestLoadYAMLMergesOverYAMLDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xpathcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collation: "http://www.w3.org/2005/xpath-functions/collation/html-ascii-case-insensitive"
timezoneMinutes: 120
externalVariables:
  who: world
include:
  - "*.xml"
`), 0o644))

	o := config.DefaultOptions()
	require.NoError(t, config.LoadYAML(path, o))
	assert.Equal(t, "http://www.w3.org/2005/xpath-functions/collation/html-ascii-case-insensitive", o.DefaultCollationURI)
	assert.Equal(t, 120, o.ImplicitTimezoneMinutes)
	assert.Equal(t, "world", o.ExternalVariables["who"])
	assert.Equal(t, []string{"*.xml"}, o.Include)
}

func TestLoadYAMLMissingFileIsNotAnError(t *testing.T) {
	o := config.DefaultOptions()
	require.NoError(t, config.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), o))
	assert.Equal(t, config.DefaultCollationURI, o.DefaultCollationURI)
}

func TestResolveFilesAppliesExcludeOverInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<a/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte("<b/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.generated.xml"), []byte("<b/>"), 0o644))

	o := config.DefaultOptions()
	o.Include = []string{filepath.Join(dir, "*.xml")}
	o.Exclude = []string{filepath.Join(dir, "*.generated.xml")}

	files, err := o.ResolveFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xml"), filepath.Join(dir, "b.xml")}, files)
}

func TestStaticContextResolvesCollationAndExternalVariables(t *testing.T) {
	o := config.DefaultOptions()
	o.ExternalVariables["name"] = "Ada"

	sc, err := o.StaticContext()
	require.NoError(t, err)
	require.NotNil(t, sc.DefaultCollation)
	_, ok := sc.ExternalVariables["name"]
	assert.True(t, ok)

	bindings := o.ExternalBindings()
	require.Contains(t, bindings, "name")
	assert.Equal(t, "Ada", bindings["name"].Item(0).StringValue())
}
