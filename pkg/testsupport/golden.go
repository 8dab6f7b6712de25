package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Golden returns the contents of testdata/name with trailing whitespace
// removed, failing the test when the file is missing.
func Golden(t testing.TB, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read golden %s: %v", name, err)
	}
	return strings.TrimRight(string(data), " \n\r\t")
}
