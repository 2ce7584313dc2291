package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlagen"
)

var (
	generator string
	tables    string
	schemas   string
	noViews   bool
	options   string
	outfile   string
	trustCert bool
	verbose   bool
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "sqlagen <url>",
	Short: "Generate SQLAlchemy model code from an existing database",
	Long: `sqlagen connects to a PostgreSQL or SQL Server database, introspects its
schema, and generates SQLAlchemy model source code compatible with
sqlacodegen's output.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&generator, "generator", "declarative", "Code generator to use: declarative or tables")
	rootCmd.Flags().StringVar(&tables, "tables", "", "Tables to process (comma-delimited)")
	rootCmd.Flags().StringVar(&schemas, "schemas", "", "Schemas to load (comma-delimited)")
	rootCmd.Flags().BoolVar(&noViews, "noviews", false, "Ignore views")
	rootCmd.Flags().StringVar(&options, "options", "", "Generator options (comma-delimited): noindexes, noconstraints, nocomments")
	rootCmd.Flags().StringVar(&outfile, "outfile", "", "Output file (default: stdout)")
	rootCmd.Flags().BoolVar(&trustCert, "trust-cert", false, "Trust the server certificate (SQL Server only)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts := &sqlagen.Options{
		Generator: generator,
		Tables:    parseList(tables),
		Schemas:   parseList(schemas),
		NoViews:   noViews,
		TrustCert: trustCert,
	}
	applyGeneratorOptions(opts, options)

	logger.Debug("Connecting to database...")
	extracted, err := sqlagen.ExtractSchema(ctx, args[0], opts)
	if err != nil {
		return err
	}
	logger.Debug("Introspected schema", zap.Int("tables", len(extracted.Tables)))

	output, err := sqlagen.Generate(extracted, opts)
	if err != nil {
		return err
	}

	if outfile != "" {
		if err := os.WriteFile(outfile, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Info("Output written", zap.String("path", outfile))
		return nil
	}

	fmt.Print(output)
	return nil
}

// parseList splits a comma-delimited flag value, trimming whitespace.
// Returns nil for an empty value.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// applyGeneratorOptions parses the comma-delimited --options flag
func applyGeneratorOptions(opts *sqlagen.Options, s string) {
	for _, opt := range parseList(s) {
		switch opt {
		case "noindexes":
			opts.NoIndexes = true
		case "noconstraints":
			opts.NoConstraints = true
		case "nocomments":
			opts.NoComments = true
		default:
			logger.Warn("Unknown generator option", zap.String("option", opt))
		}
	}
}

func main() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger = zap.NewNop()
		}
		return err
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
