package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/lecture-studio/internal/app"
	"github.com/yungbote/lecture-studio/internal/services"
)

func newGradesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List grade folders with published lectures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(runCtx context.Context, a *app.App) error {
				grades, err := a.Services.Catalog.ListGrades(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), gradesTable(grades))
				return nil
			})
		},
	}
}

func newLecturesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lectures <grade>",
		Short: "List published lectures for a grade folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(runCtx context.Context, a *app.App) error {
				lectures, err := a.Services.Catalog.ListLectures(runCtx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), lecturesTable(lectures))
				return nil
			})
		},
	}
}

func gradesTable(grades []services.GradeInfo) string {
	if len(grades) == 0 {
		return "No grades published yet\n"
	}
	rows := make([][]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []string{g.ID, g.Name})
	}
	return renderTable([]string{"ID", "Grade"}, rows) + "\n"
}

func lecturesTable(lectures []services.LectureInfo) string {
	if len(lectures) == 0 {
		return "No lectures in this grade\n"
	}
	rows := make([][]string, 0, len(lectures))
	for _, l := range lectures {
		rows = append(rows, []string{l.Title, l.URL})
	}
	return renderTable([]string{"Title", "URL"}, rows) + "\n"
}
