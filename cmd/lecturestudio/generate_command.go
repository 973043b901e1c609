package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/yungbote/lecture-studio/internal/app"
	"github.com/yungbote/lecture-studio/internal/jobs/pipeline/lecture_build"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		planFlag    string
		seedFlag    string
		outFlag     string
		publishFlag bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate narration, illustrations, intro video and quiz for a lesson plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(planFlag) == "" {
				return errors.New("--plan is required")
			}
			return ctx.withApp(cmd.Context(), func(runCtx context.Context, a *app.App) error {
				lock := flock.New(a.Cfg.RunLockPath())
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !ok {
					return fmt.Errorf("another generation is already running (lock %s)", a.Cfg.RunLockPath())
				}
				defer func() { _ = lock.Unlock() }()

				if _, err := credentials.Ensure(runCtx, a.Clients.Credentials, a.Clients.Selector); err != nil {
					if errors.Is(err, credentials.ErrNoSelector) {
						return errors.New(lecture_build.MissingKeyMessage)
					}
					return fmt.Errorf("select api key: %w", err)
				}

				req := lecture_build.Request{Plan: sourceFromArg(planFlag)}
				if strings.TrimSpace(seedFlag) != "" {
					req.Seed = sourceFromArg(seedFlag)
				}
				res, err := a.Runner.Run(runCtx, req)
				if err != nil {
					return err
				}

				out := strings.TrimSpace(outFlag)
				if out == "" {
					out = filepath.Join(a.Cfg.StateDir, "bundles", res.Slug+".json")
				}
				if err := writeBundle(out, bundleFile{RunID: res.RunID, Slug: res.Slug, Plan: res.Plan, Assets: res.Assets}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bundle ready: %s\n", out)
				fmt.Fprintf(cmd.OutOrStdout(), "Video: %s\n", res.Assets.VideoURL)

				if !publishFlag {
					return nil
				}
				pub, err := a.Runner.PublishCurrent(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published: %s\n", pub.URL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&planFlag, "plan", "", "Lesson plan JSON file or URL")
	cmd.Flags().StringVar(&seedFlag, "seed-image", "", "Optional seed image file or URL for the conditioned intro still")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Bundle output path (defaults to <state_dir>/bundles/<slug>.json)")
	cmd.Flags().BoolVar(&publishFlag, "publish", false, "Publish the lecture deck once the bundle is ready")
	return cmd
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <bundle.json>",
		Short: "Publish a previously generated bundle as an HTML lecture deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readBundle(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(runCtx context.Context, a *app.App) error {
				res := &lecture_build.Result{
					RunID:  bundle.RunID,
					State:  lecture_build.StateBundleReady,
					Plan:   bundle.Plan,
					Slug:   bundle.Slug,
					Assets: bundle.Assets,
				}
				pub, err := a.Pipeline.Publish(runCtx, bundle.RunID, res)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published: %s\n", pub.URL)
				if pub.CoverURL != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Cover: %s\n", pub.CoverURL)
				}
				return nil
			})
		},
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addrFlag string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lecture studio HTTP API and viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(addrFlag) != "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				cfg.HTTP.Addr = addrFlag
				ctx.config = cfg
			}
			return ctx.withApp(cmd.Context(), func(runCtx context.Context, a *app.App) error {
				return a.Serve(runCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (overrides http.addr)")
	return cmd
}
