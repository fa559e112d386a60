package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/dub"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/services/gemini"
	"reelsmith/internal/services/whisperx"
	"reelsmith/internal/transcode"
)

// collaborators are the external boundaries a batch talks to.
type collaborators struct {
	transcoder  transcode.Runner
	prober      compose.Prober
	transcriber dub.Transcriber
	translator  dub.Translator
	synthesizer dub.Synthesizer
}

type collaboratorFactory func(cfg *config.Config, logger *slog.Logger) collaborators

func productionCollaborators(cfg *config.Config, logger *slog.Logger) collaborators {
	client := gemini.NewFromConfig(cfg.Gemini, logger)
	return collaborators{
		transcoder:  transcode.NewExecutor(cfg.FFmpegBinary(), logger),
		prober:      ffprobe.NewProber(time.Duration(cfg.Render.ProbeTimeoutSeconds) * time.Second),
		transcriber: whisperx.NewService(whisperx.FromConfig(cfg.WhisperX), logger),
		translator:  client,
		synthesizer: client,
	}
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	newCollaborators collaboratorFactory
}

func newCommandContext(factory collaboratorFactory) *commandContext {
	var configFlag string
	return &commandContext{
		configFlag:       &configFlag,
		newCollaborators: factory,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
