package iospecies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChecklist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "species.csv")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestTaxonKeys(t *testing.T) {
	// The accepted key wins over the usage key when present.
	csv := "scientificName,usageKey,acceptedUsageKey\n" +
		"Aus bus,10,\n" +
		"Cus dus,20,99\n"
	keys, err := TaxonKeys(writeChecklist(t, csv))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 99}, keys)
}

func TestTaxonKeysDedupeSort(t *testing.T) {
	csv := "usageKey\n30\n10\n30\n20\n"
	keys, err := TaxonKeys(writeChecklist(t, csv))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, keys)
}

func TestTaxonKeysFloatRendered(t *testing.T) {
	// Dataframe exports render integer keys as floats; those still
	// count, and a float accepted key still wins over the usage key.
	csv := "scientificName,usageKey,acceptedUsageKey\n" +
		"Aus bus,10.0,\n" +
		"Cus dus,20,99.0\n" +
		"Eus fus,30.5,\n"
	keys, err := TaxonKeys(writeChecklist(t, csv))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 99}, keys)
}

func TestTaxonKeysSkipsNonNumeric(t *testing.T) {
	csv := "scientificName,usageKey\n" +
		"Aus bus,10\n" +
		"Cus dus,n/a\n" +
		"Eus fus,\n"
	keys, err := TaxonKeys(writeChecklist(t, csv))
	require.NoError(t, err)
	assert.Equal(t, []int{10}, keys)
}

func TestTaxonKeysEmpty(t *testing.T) {
	csv := "scientificName,usageKey\nAus bus,none\n"
	_, err := TaxonKeys(writeChecklist(t, csv))
	assert.Error(t, err)
}

func TestTaxonKeysMissingFile(t *testing.T) {
	_, err := TaxonKeys(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
