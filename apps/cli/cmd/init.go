package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/httpui/packages/core/config"
	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a config file and an example .http file",
	Long: `Initialize httpui in a directory (default: the current one).

This creates:
  - .httpui.yaml   - Configuration file
  - example.http   - Example request file

Examples:
  httpui init
  httpui init ./requests --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

const exampleContent = `# Fetch a single post
GET https://jsonplaceholder.typicode.com/posts/1
Accept: application/json

###
# Create a post
POST https://jsonplaceholder.typicode.com/posts HTTP/1.1
Content-Type: application/json
Accept: application/json

{
  "title": "hello",
  "body": "sent by httpui",
  "userId": 1
}

###
DELETE https://jsonplaceholder.typicode.com/posts/1
`

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, ".httpui.yaml")
	exampleFile := filepath.Join(dir, "example.http")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "httpui/" + version,
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	// Guard against shipping an example the parser rejects.
	if _, err := httpfile.ParseString(exampleContent); err != nil {
		return fmt.Errorf("example file is invalid: %w", err)
	}
	if err := os.WriteFile(exampleFile, []byte(exampleContent), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'httpui list %s' to see the example requests.\n", exampleFile)
	return nil
}
