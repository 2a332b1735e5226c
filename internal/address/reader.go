package address

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInputAccess is returned when the address list cannot be read.
var ErrInputAccess = errors.New("input file is not accessible")

const (
	initialLineBuffer = 64 * 1024
	maxLineSize       = 16 * 1024 * 1024
)

// ReadFile reads a UTF-8 address list, one address per line, and normalizes it.
func ReadFile(path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrInputAccess, path, err)
	}
	if !info.Mode().IsRegular() {
		return Result{}, fmt.Errorf("%w: %s is not a regular file", ErrInputAccess, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrInputAccess, path, err)
	}
	defer file.Close()

	// A leading byte order mark would otherwise stick to the first address.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(file, decoder))
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err = scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: failed to read %s: %w", ErrInputAccess, path, err)
	}

	return Normalize(lines), nil
}
