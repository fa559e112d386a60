package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/notifications"
	"reelsmith/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var sendTest bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, binaries, assets, and the Gemini API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Binaries", colorize)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				detail := status.Path
				switch {
				case status.Blocking():
					kind, detail = statusError, status.Detail
				case !status.Available:
					kind, detail = statusWarn, status.Detail+" (optional)"
				}
				lines = append(lines, renderStatusLine(status.Name, kind, detail, colorize))
			}
			if version := preflight.FFmpegVersion(cfg.FFmpegBinary()); version != "" {
				lines = append(lines, renderStatusLine("FFmpeg build", statusInfo, version, colorize))
			}
			lines = append(lines, "")

			results := preflight.RunAll(cmd.Context(), cfg)
			lines = append(lines, renderSectionHeader("Readiness", colorize)...)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			publishStatus := preflight.CheckPublishFromConfig(cfg)
			publishKind := statusOK
			if !publishStatus.Passed {
				publishKind = statusError
				results = append(results, publishStatus)
			}
			lines = append(lines, renderStatusLine(publishStatus.Name, publishKind, publishStatus.Detail, colorize))
			if sendTest {
				notifyStatus := checkNotifications(cmd, cfg.Notify.NtfyTopic, notifications.NewService(cfg.Notify))
				notifyKind := statusOK
				switch {
				case !notifyStatus.Passed:
					notifyKind = statusError
					results = append(results, notifyStatus)
				case cfg.Notify.NtfyTopic == "":
					notifyKind = statusWarn
				}
				lines = append(lines, renderStatusLine(notifyStatus.Name, notifyKind, notifyStatus.Detail, colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sendTest, "notify", false, "Send a test notification to the configured ntfy topic")
	return cmd
}

func checkNotifications(cmd *cobra.Command, topic string, svc notifications.Service) preflight.Result {
	result := preflight.Result{Name: "Notifications"}
	if strings.TrimSpace(topic) == "" {
		result.Passed = true
		result.Detail = "Not configured"
		return result
	}
	if err := svc.TestNotification(cmd.Context()); err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Passed = true
	result.Detail = "Test sent to " + topic
	return result
}
