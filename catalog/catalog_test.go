package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(Files{
		LabelsFile:      writeFile(t, dir, "labels.txt", "Turdus merula_Eurasian Blackbird\nParus major_Great Tit\n\n"),
		TranslatedFile:  writeFile(t, dir, "labels_nb.txt", "Turdus merula_Svarttrost\nParus major_Kjøttmeis\n"),
		CodesFile:       writeFile(t, dir, "codes.json", `{"Turdus merula_Eurasian Blackbird": "eurbla"}`),
		SpeciesListFile: writeFile(t, dir, "species_list.txt", "Parus major_Great Tit\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "Svarttrost", c.CommonName("Turdus merula_Eurasian Blackbird"))
	assert.Equal(t, "eurbla", c.Code("Turdus merula_Eurasian Blackbird"))
	assert.Equal(t, "Parus major_Great Tit", c.Code("Parus major_Great Tit"))
	assert.True(t, c.Included("Parus major_Great Tit"))
	assert.False(t, c.Included("Turdus merula_Eurasian Blackbird"))
}

func TestLoadYAMLCodes(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(Files{
		LabelsFile: writeFile(t, dir, "labels.txt", "dog\ncat\n"),
		CodesFile:  writeFile(t, dir, "codes.yaml", "dog: dogg\ncat: catt\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "catt", c.Code("cat"))
	assert.True(t, c.Included("dog"))
}

func TestNewTranslationMismatch(t *testing.T) {
	_, err := New([]string{"a", "b"}, []string{"a"}, nil, nil)
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	c, err := New([]string{"Turdus merula_Eurasian Blackbird", "Noise"}, nil, nil, nil)
	require.NoError(t, err)

	sci, common := c.Names("Turdus merula_Eurasian Blackbird")
	assert.Equal(t, "Turdus merula", sci)
	assert.Equal(t, "Eurasian Blackbird", common)

	sci, common = c.Names("Noise")
	assert.Equal(t, "Noise", sci)
	assert.Equal(t, "Noise", common)
	assert.Equal(t, "Noise", c.CommonName("Noise"))
}
