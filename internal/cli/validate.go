package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/internal/store"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var (
		dataPath string
		useDB    bool
	)

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Validate a query document without executing it",
		Long: "Checks a query document against the embedded schema. With " +
			"--data, also loads the referenced tables and runs column " +
			"resolution and predicate classification, reporting how many " +
			"conditions can be pushed down to each table.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, dataPath, useDB, args[0])
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "folder of .table.json files to resolve the query against")
	cmd.Flags().BoolVar(&useDB, "db", false, "treat --data as a SQLite database file")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, dataPath string, useDB bool, queryPath string) error {
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

	if dataPath == "" {
		return formatter.Success("query document is valid", "")
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

	if _, _, err := engine.Resolve(q, tables); err != nil {
		formatter.Error("VALIDATION_FAILED", err.Error())
		return WrapExitError(ExitFailure, "resolve query", err)
	}
	_, cls, err := engine.Classify(q, tables)
	if err != nil {
		formatter.Error("VALIDATION_FAILED", err.Error())
		return WrapExitError(ExitFailure, "classify query", err)
	}

	for _, item := range q.From {
		formatter.VerboseLog("table %s: %d conditions pushed down", item.As, len(cls.EarlyFor(item.As)))
	}
	formatter.VerboseLog("late conditions evaluated per joined tuple: %d", len(cls.Late))
	if cls.ConstFalse {
		formatter.VerboseLog("a literal-only condition is false: the result is empty")
	}

	return formatter.Success(fmt.Sprintf("query document is valid against %d tables", len(tables)), "")
}
