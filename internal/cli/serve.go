package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the checkers as tools over stdio",
	Long: `Serve speaks line-delimited JSON on stdin/stdout, one request per
line. A coding assistant calls individual checkers (check_files,
check_schema, ...) or verify_all, and receives formatted findings with
ground-truth context.

Request:  {"id":1,"tool":"check_files","args":{"project_dir":".","plan":"..."}}
Response: {"id":1,"result":"..."}

The special tool list_tools enumerates the available callables.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	set := tools.New(checker.NewRegistry(buildCache(cfg)))

	if verbose {
		fmt.Fprintln(os.Stderr, "groundcheck serving tools on stdio")
	}
	return tools.NewServer(set).Serve(os.Stdin, os.Stdout)
}
