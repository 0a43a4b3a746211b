package trainers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() *Directory {
	return NewDirectory([]Trainer{
		{Name: "Sarah", Email: "Sarah@Gymnastika.com", Phone: "96170111222"},
		{Name: "Ziad", Email: "ziad@gymnastika.com"},
	})
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	d := testDirectory()

	trainer := d.Resolve("sarah@gymnastika.com")
	require.NotNil(t, trainer)
	assert.Equal(t, "Sarah", trainer.Name)

	trainer = d.Resolve("SARAH@GYMNASTIKA.COM")
	require.NotNil(t, trainer)
	assert.Equal(t, "Sarah", trainer.Name)
}

func TestResolveUnknownOrEmpty(t *testing.T) {
	d := testDirectory()
	assert.Nil(t, d.Resolve("nobody@example.com"))
	assert.Nil(t, d.Resolve(""))
}

func TestNameFallsBack(t *testing.T) {
	d := testDirectory()
	assert.Equal(t, "Sarah", d.Name("sarah@gymnastika.com"))
	assert.Equal(t, FallbackName, d.Name("nobody@example.com"))
	assert.Equal(t, FallbackName, d.Name(""))
}

func TestPhoneMayBeEmpty(t *testing.T) {
	d := testDirectory()
	assert.Equal(t, "96170111222", d.Phone("sarah@gymnastika.com"))
	assert.Empty(t, d.Phone("ziad@gymnastika.com"))
	assert.Empty(t, d.Phone("nobody@example.com"))
}

func TestAllReturnsACopy(t *testing.T) {
	d := testDirectory()
	all := d.All()
	require.Len(t, all, 2)

	all[0].Name = "mutated"
	assert.Equal(t, "Sarah", d.Name("sarah@gymnastika.com"))
}

func TestDefaultDirectoryEntriesAreComplete(t *testing.T) {
	for _, trainer := range Default().All() {
		assert.NotEmpty(t, trainer.Name)
		assert.NotEmpty(t, trainer.Email)
	}
}
