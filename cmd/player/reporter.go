package main

import (
	"time"

	"github.com/framecast/player/pkg/engine"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/scene"
)

// reporter prints engine events to the console.
type reporter struct {
	engine.NopCallback
	log *logger.Logger
}

func (r reporter) OnStateChanged(s engine.State) { r.log.Debug().Msgf("state: %v", s) }

func (r reporter) OnSceneChanged(s scene.Scene, elapsed time.Duration) {
	if s == nil {
		r.log.Info().Msg("Scene cleared")
		return
	}
	r.log.Info().Msgf("Scene %v loaded in %v", s, elapsed)
}

func (r reporter) OnLoadSceneError(err error) { r.log.Error().Err(err).Msg("scene") }
