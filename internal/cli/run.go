package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var useDB bool

	cmd := &cobra.Command{
		Use:   "run <data-path> <query-file> <out-file>",
		Short: "Execute a query document against a set of tables",
		Long: "Loads tables from a folder of .table.json files (or a SQLite " +
			"database with --db), executes the query document, and writes the " +
			"result rows, header first, as a JSON array to the output file.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, useDB, args[0], args[1], args[2])
		},
	}

	cmd.Flags().BoolVar(&useDB, "db", false, "treat <data-path> as a SQLite database file")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RootOptions, useDB bool, dataPath, queryPath, outPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	q, err := LoadQuery(queryPath)
	if err != nil {
		code, exit := "INVALID_QUERY", ExitFailure
		if errors.Is(err, os.ErrNotExist) {
			code, exit = "QUERY_NOT_FOUND", ExitCommandError
		}
		formatter.Error(code, err.Error())
		return WrapExitError(exit, "load query", err)
	}

	var tables []*store.Table
	if useDB {
		tables, err = store.LoadDatabase(dataPath, q.From)
	} else {
		tables, err = store.LoadFolder(dataPath, q.From)
	}
	if err != nil {
		formatter.Error("LOAD_FAILED", err.Error())
		return WrapExitError(ExitCommandError, "load tables", err)
	}
	formatter.VerboseLog("loaded %d tables from %s", len(tables), dataPath)

	cur, err := engine.Execute(q, tables)
	if err != nil {
		formatter.Error("VALIDATION_FAILED", err.Error())
		return WrapExitError(ExitFailure, "execute query", err)
	}
	formatter.VerboseLog("run %s: executing against %d tables", cur.Token(), len(tables))

	out, err := os.Create(outPath)
	if err != nil {
		formatter.Error("OUTPUT_FAILED", err.Error())
		return WrapExitError(ExitCommandError, "create output file", err)
	}
	defer out.Close()

	rows, err := writeResult(out, cur)
	if err != nil {
		formatter.Error("OUTPUT_FAILED", err.Error())
		return WrapExitError(ExitCommandError, "write output file", err)
	}
	if err := out.Close(); err != nil {
		formatter.Error("OUTPUT_FAILED", err.Error())
		return WrapExitError(ExitCommandError, "close output file", err)
	}
	formatter.VerboseLog("run %s: enumerated %d joined tuples", cur.Token(), cur.Visited())

	return formatter.Success(fmt.Sprintf("wrote header and %d rows to %s", rows, outPath), cur.Token())
}

// writeResult streams the header and result rows as a JSON array, one
// element per line. Rows are written as they are produced; the full
// result set is never materialized.
func writeResult(w io.Writer, cur *engine.Cursor) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return 0, err
	}

	header, err := json.Marshal(cur.Header())
	if err != nil {
		return 0, err
	}
	if _, err := bw.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	for cur.Next() {
		row, err := json.Marshal(cur.Row())
		if err != nil {
			return rows, err
		}
		if _, err := bw.WriteString(",\n "); err != nil {
			return rows, err
		}
		if _, err := bw.Write(row); err != nil {
			return rows, err
		}
		rows++
	}

	if _, err := bw.WriteString("]\n"); err != nil {
		return rows, err
	}
	return rows, bw.Flush()
}
