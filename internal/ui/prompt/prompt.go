package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Defines the interface for asking the user a yes/no question
type Prompter interface {
	// Asks the user for confirmation; only an explicit yes counts
	Confirm(message string) (bool, error)
}

// Provides a standard implementation of the Prompter interface using specified input/output streams
type StandardPrompter struct {
	reader io.Reader
	writer io.Writer
}

// Creates a new StandardPrompter with the given input and output streams
func NewStandardPrompter(in io.Reader, out io.Writer) *StandardPrompter {
	return &StandardPrompter{
		reader: in,
		writer: out,
	}
}

// Asks the user for confirmation; anything other than y/yes declines
func (p *StandardPrompter) Confirm(message string) (bool, error) {
	fmt.Fprintln(p.writer, message)
	fmt.Fprint(p.writer, "Continue? [y/N]: ")

	reader := bufio.NewReader(p.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("error reading user input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
