package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/output"
)

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isHTTPFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isHTTPFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isHTTPFile(path string) bool {
	return filepath.Ext(path) == ".http"
}

// readReport parses every item of a file, keeping malformed requests as
// failed items.
func readReport(path string) (*output.FileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return output.NewFileReport(path, httpfile.NewParser(f).WithFile(path).All()), nil
}

// parseIndexes converts 1-based item positions given on the command line.
func parseIndexes(args []string, count int) ([]int, error) {
	indexes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid request index %q", arg)
		}
		if n < 1 || n > count {
			return nil, fmt.Errorf("request index %d out of range (file has %d)", n, count)
		}
		indexes = append(indexes, n)
	}
	return indexes, nil
}
