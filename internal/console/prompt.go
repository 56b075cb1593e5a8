package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question until it gets y or n. EOF counts as no.
func Confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	for {
		fmt.Fprintf(out, "%s (y/n): ", question)
		line, err := in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))

		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		fmt.Fprintln(out, "Please answer y or n.")
	}
}
