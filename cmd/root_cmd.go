package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "v0.1 -- HEAD"

// GlobalParams 所有子命令共享的参数
type GlobalParams struct {
	Verbose bool `json:"verbose"` // 输出 debug 日志
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	global := &GlobalParams{}
	rootCmd := &cobra.Command{
		Use:   "roml",
		Short: "Roml converts data to and from ROML documents.",
		Long: "Roml converts JSON, YAML, TOML and MessagePack data to ROML, the line oriented format " +
			"whose syntax style shifts with every line and whose prime numbers are tagged, and back again.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "enable debug logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Roml",
		Long:  `All software has versions. This is Roml's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Roml "+version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newEncodeCmd(global))
	rootCmd.AddCommand(newDecodeCmd(global))
	rootCmd.AddCommand(newCheckCmd(global))
	rootCmd.AddCommand(newReplCmd(global))
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newLogger writes text logs to w, at debug level when verbose.
func newLogger(w io.Writer, global *GlobalParams) *slog.Logger {
	level := slog.LevelInfo
	if global.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
