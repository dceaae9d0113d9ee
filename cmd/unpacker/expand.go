package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yokitheyo/unpacker/unpack"
)

func newExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "expand TEXT...",
		Aliases: []string{"unpack"},
		Short:   "Print the expansion of each argument",
		Example: "  unpacker expand a3[bc]4[d]e 2[3[x]y]",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				out, err := unpack.Unpack(arg)
				if err != nil {
					return fmt.Errorf("%q: %s", arg, unpack.Reason(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate TEXT...",
		Short: "Check each argument and print ok or the reason it is rejected",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, arg := range args {
				res := unpack.Validate(arg)
				if res.Valid() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\n", arg)
					continue
				}
				invalid++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, res.Message())
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d inputs are not valid for unpacking", invalid, len(args))
			}
			return nil
		},
	}
}
