package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		DataDir:    base,
		ReportsDir: filepath.Join(base, "reports"),
		CacheDir:   filepath.Join(base, "cache"),
	}
}

// readCSV reads a written file, reporting whether it starts with a UTF-8 BOM
// and returning the parsed rows
func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	hasBOM := bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if hasBOM {
		content = content[3:]
	}

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return hasBOM, rows
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	err := writer.WriteSimpleCSV("table.csv", []string{"Region", "Sales"}, [][]string{
		{"West", "700.00"},
		{"East", "300.00"},
	})
	require.NoError(t, err)

	hasBOM, rows := readCSV(t, paths.GetReportPath("table.csv"))
	assert.True(t, hasBOM, "report tables carry a BOM for spreadsheet apps")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Region", "Sales"}, rows[0])
	assert.Equal(t, []string{"West", "700.00"}, rows[1])
	assert.Equal(t, []string{"East", "300.00"}, rows[2])
}

func TestCSVWriter_WriteCSV_NoBOM(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	err := writer.WriteCSV("plain.csv", WriteOptions{
		Headers:   []string{"A"},
		Records:   [][]string{{"1"}},
		BOMPrefix: false,
	})
	require.NoError(t, err)

	hasBOM, rows := readCSV(t, paths.GetReportPath("plain.csv"))
	assert.False(t, hasBOM)
	assert.Len(t, rows, 2)
}

func TestCSVWriter_OverwritesOnRerun(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	require.NoError(t, writer.WriteSimpleCSV("rerun.csv", []string{"A"}, [][]string{{"1"}, {"2"}, {"3"}}))
	require.NoError(t, writer.WriteSimpleCSV("rerun.csv", []string{"A"}, [][]string{{"9"}}))

	_, rows := readCSV(t, paths.GetReportPath("rerun.csv"))
	require.Len(t, rows, 2, "rerun replaces the file instead of appending")
	assert.Equal(t, []string{"9"}, rows[1])
}

func TestCSVWriter_QuotesEmbeddedCommas(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	err := writer.WriteSimpleCSV("products.csv", []string{"Product"}, [][]string{
		{`Bush Somerset Collection Bookcase, Oak`},
	})
	require.NoError(t, err)

	_, rows := readCSV(t, paths.GetReportPath("products.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, `Bush Somerset Collection Bookcase, Oak`, rows[1][0])
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	abs := filepath.Join(t.TempDir(), "anywhere.csv")
	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, paths.GetCachePath("tmp.csv"), writer.resolvePath("cache/tmp.csv"))
	assert.Equal(t, paths.GetReportPath("summary.csv"), writer.resolvePath("summary.csv"))
}

func TestStreamWriter(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	stream, err := writer.CreateStreamWriter("streamed.csv", []string{"OrderID", "Sales"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"O-1", "100.00"}))
	require.NoError(t, stream.WriteRecord([]string{"O-2", "200.00"}))
	require.NoError(t, stream.Close())

	hasBOM, rows := readCSV(t, paths.GetReportPath("streamed.csv"))
	assert.False(t, hasBOM, "streamed files skip the BOM")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"O-2", "200.00"}, rows[2])
}

func TestStreamWriter_CreatesDirectory(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	// The reports directory does not exist yet
	_, err := os.Stat(paths.ReportsDir)
	require.True(t, os.IsNotExist(err))

	stream, err := writer.CreateStreamWriter("fresh.csv", []string{"A"})
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	assert.FileExists(t, paths.GetReportPath("fresh.csv"))
}
