package agent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the input stream closes before a valid
// choice was read.
var ErrNoInput = errors.New("no more input")

const (
	promptText     = "How many matches do you want to take? (1, 2 or 3): "
	notANumberText = "Invalid input. Please enter a number."
	outOfRangeText = "Please enter 1, 2 or 3."
)

// Interactive asks a person for each move on a line based stream
type Interactive struct {
	Tally
	name string
	in   *bufio.Reader
	out  io.Writer
}

// NewInteractive creates an agent reading answers from in and writing
// prompts to out.
func NewInteractive(name string, in io.Reader, out io.Writer) *Interactive {
	i := &Interactive{name: name, out: out}
	if in != nil {
		i.in = bufio.NewReader(in)
	}
	if i.out == nil {
		i.out = io.Discard
	}
	return i
}

func (i *Interactive) Name() string { return i.name }

// ChooseMove prompts until the answer is 1, 2 or 3. The pile is not
// checked here; the environment rejects takes larger than the pile.
func (i *Interactive) ChooseMove(pile int) (int, error) {
	if i.in == nil {
		return 0, ErrNoInput
	}

	for {
		fmt.Fprint(i.out, promptText)

		line, err := i.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return 0, ErrNoInput
			}
			return 0, fmt.Errorf("reading choice: %w", err)
		}

		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		switch {
		case convErr != nil:
			fmt.Fprintln(i.out, notANumberText)
		case choice < 1 || choice > 3:
			fmt.Fprintln(i.out, outOfRangeText)
		default:
			return choice, nil
		}

		if err == io.EOF {
			return 0, ErrNoInput
		}
	}
}

func (i *Interactive) String() string { return i.Summary(i.name) }
