// verseek seeks a Debian source tree to any version recorded in its
// changelog history, and restores it afterwards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turnkeylinux/verseek/internal/config"
	"github.com/turnkeylinux/verseek/internal/seek"
)

var (
	listFlag  bool
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "verseek /path/to/debian-source [version]",
	Short: "Seek to available versions in a Debian source package",
	Long: `Seek to available versions in a Debian source package.

With a version argument the working tree is checked out at the revision
that recorded that version. With no version argument a previous seek is
undone and the tree is restored to the branch it was on.`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&listFlag, "list", "l", false, "list seekable versions")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	logger := zap.NewNop()
	if debugFlag || cfg.Debug {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	backend, err := seek.New(args[0],
		seek.WithLogger(logger),
		seek.WithMarkerRef(cfg.MarkerRef),
		seek.WithAutoversionBinary(cfg.AutoversionBin),
	)
	if err != nil {
		return err
	}

	if listFlag {
		versions, err := backend.ListVersions()
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	}

	version := ""
	if len(args) == 2 {
		version = args[1]
	}
	return backend.Seek(version)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
