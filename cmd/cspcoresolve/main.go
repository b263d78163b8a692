// Command cspcoresolve is a small demonstration CLI over the cspcore
// library: it builds an N-queens CSP (one integer variable per row, holding
// the column it occupies) and exercises the driver's three query modes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/domain"
	"github.com/semiexp/cspcore/internal/driver"
)

// solveTimeout bounds the whole of one subcommand's work (every Solve call
// it issues shares a single deadline from solveContext); defined via
// pflag directly (rather than cobra's wrapper) the way the teacher's own
// cmd/olm/main.go declares its global flags, since this value is read from
// multiple subcommands' RunE rather than threaded through one command's
// local flag set.
var solveTimeout = pflag.Duration("timeout", 10*time.Second, "maximum time allowed for all solves of one command")

func solveContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), *solveTimeout)
}

func main() {
	var n int

	rootCmd := &cobra.Command{
		Use:   "cspcoresolve",
		Short: "cspcoresolve",
		Long:  "A demonstration CLI exercising the cspcore CSP-to-SAT compiler against N-queens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().IntVar(&n, "n", 8, "board size")

	rootCmd.AddCommand(newSolveCmd(&n))
	rootCmd.AddCommand(newFactsCmd(&n))
	rootCmd.AddCommand(newEnumerateCmd(&n))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newQueensCSP builds the classic N-queens puzzle: row[i] is the column of
// the queen in row i, all rows distinct, and no two queens share a diagonal.
// Every row variable is marked an answer key.
func newQueensCSP(n int) (*csp.CSP, []csp.IntVarID) {
	c := csp.New()
	rows := make([]csp.IntVarID, n)
	for i := range rows {
		rows[i] = c.NewIntVar(domain.FromRange(0, arithmetic.CheckedInt(n-1)))
		c.AddAnswerIntKey(rows[i])
	}

	c.AddConstraint(csp.AllDifferentOf(rows...))

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := arithmetic.CheckedInt(j - i)
			diff := csp.Sub(csp.IntVariable(rows[j]), csp.IntVariable(rows[i]))
			c.AddConstraint(csp.Cmp(diff, csp.CmpNe, csp.IntConstant(d)))
			c.AddConstraint(csp.Cmp(diff, csp.CmpNe, csp.IntConstant(-d)))
		}
	}
	return c, rows
}

func newDriver(n int) (*driver.Driver, []csp.IntVarID, error) {
	c, rows := newQueensCSP(n)
	d, err := driver.New(c, driver.WithConfig(config.Default()), driver.WithLogger(log.NewEntry(log.StandardLogger())))
	return d, rows, err
}

func printBoard(d driver.Model, rows []csp.IntVarID) {
	for _, r := range rows {
		fmt.Println(int(d.IntValue(r)))
	}
}

func newSolveCmd(n *int) *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "find one solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, rows, err := newDriver(*n)
			if err != nil {
				return err
			}
			ctx, cancel := solveContext()
			defer cancel()
			model, ok, err := d.Solve(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no solution")
				return nil
			}
			printBoard(model, rows)
			return nil
		},
	}
}

func newFactsCmd(n *int) *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "report which queens are fixed across every solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, rows, err := newDriver(*n)
			if err != nil {
				return err
			}
			ctx, cancel := solveContext()
			defer cancel()
			facts, err := d.IrrefutableFacts(ctx)
			if err != nil {
				return err
			}
			for i, r := range rows {
				f := facts.Int[r]
				if f.Fixed {
					fmt.Printf("row %d: fixed at column %d\n", i, int(f.Value))
				} else {
					fmt.Printf("row %d: not fixed (seen %v)\n", i, f.Possibilities)
				}
			}
			return nil
		},
	}
}

func newEnumerateCmd(n *int) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "enumerate solutions up to --limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, rows, err := newDriver(*n)
			if err != nil {
				return err
			}
			it := d.AnswerIter()
			ctx, cancel := solveContext()
			defer cancel()
			count := 0
			for count < limit {
				model, ok, err := it.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				fmt.Printf("--- solution %d ---\n", count+1)
				printBoard(model, rows)
				count++
			}
			fmt.Printf("found %d solution(s)\n", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of solutions to print")
	return cmd
}
