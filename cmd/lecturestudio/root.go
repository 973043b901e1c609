package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "lecturestudio",
		Short:         "Generate, publish and browse narrated lectures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (defaults to $LECTURESTUDIO_CONFIG)")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newGradesCommand(ctx))
	rootCmd.AddCommand(newLecturesCommand(ctx))
	rootCmd.AddCommand(newKeyCommand(ctx))

	return rootCmd
}
