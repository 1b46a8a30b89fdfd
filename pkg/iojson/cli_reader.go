package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a document from the file named by its flag or, when the
// flag is unset, from piped stdin.
type FileReader[T any] struct {
	// Decode converts the raw input into a T. Defaults to JSON.
	Decode func(data []byte, v *T) error

	fileFlagValue string
	stdin         io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to input file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Source describes where Read takes its input from.
func (fr *FileReader[T]) Source() string {
	if fr.fileFlagValue != "" {
		return fr.fileFlagValue
	}
	return "stdin"
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	data, err := fr.readAll()
	if err != nil {
		return input, err
	}

	decode := fr.Decode
	if decode == nil {
		decode = func(data []byte, v *T) error { return json.Unmarshal(data, v) }
	}

	if err := decode(data, &input); err != nil {
		return input, fmt.Errorf("decode %s: %w", fr.Source(), err)
	}

	return input, nil
}

func (fr *FileReader[T]) readAll() ([]byte, error) {
	if fr.fileFlagValue != "" {
		data, err := os.ReadFile(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return data, nil
	}

	if fr.stdin != nil {
		return io.ReadAll(fr.stdin)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe input")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
