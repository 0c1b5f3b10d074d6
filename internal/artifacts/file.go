package artifacts

import (
	"fmt"
	"os"
)

// readDocument reads an artifact file and returns it as JSON
func readDocument(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return normalise(data, formatOf(path))
}
