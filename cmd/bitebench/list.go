package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rwcarlsen/biteopt/bench"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the benchmark function catalog",
	Run: func(cmd *cobra.Command, args []string) {
		for _, fn := range bench.AllFuncs {
			low, up := fn.Bounds()
			opt := fn.Optima()[0]
			fmt.Printf("%-16v %3v dims, bounds [%v, %v], optimum %v\n",
				fn.Name(), len(low), low[0], up[0], opt.Val)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
