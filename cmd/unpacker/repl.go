package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yokitheyo/unpacker/unpack"
)

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read packed text line by line and print each expansion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

const maxLineBytes = 1 << 20

// runREPL prompts until in is exhausted (EOF or Ctrl+D).
func runREPL(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for {
		fmt.Fprintln(out, "Enter the text to unpack and press ENTER:")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r")

		unpacked, err := unpack.Unpack(line)
		if err != nil {
			fmt.Fprintf(out, "The provided text is not valid for unpacking. Details:\n%s\n", unpack.Reason(err))
		} else {
			fmt.Fprintf(out, "Unpacked: %s\n", unpacked)
		}
		fmt.Fprintln(out)
	}
}
