package spc

import (
	"context"
	"errors"
	"fmt"

	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/jschlyter/spc2mqtt/internal/util"
)

// ErrUnknownMode is returned when a mode change is requested with a mode the
// control endpoint has no command for.
var ErrUnknownMode = errors.New("unknown area mode")

// commands is the write side of the gateway API. State changes arrive back
// through the event stream, so a successful command updates nothing locally.
type commands struct {
	fetch *fetcher
	log   *log.Logger
}

func (c *commands) setMode(ctx context.Context, id string, mode AreaMode) error {
	command, ok := areaModeCommands[mode]
	if !ok {
		allowed := util.JoinWithOr([]string{
			ModeUnset.String(), ModePartSetA.String(), ModePartSetB.String(), ModeFullSet.String(),
		})
		return fmt.Errorf("%w %v: mode must be %s", ErrUnknownMode, mode, allowed)
	}
	c.log.Debug("Sending %s command for area %s", command, id)
	if err := c.fetch.put(ctx, "spc", "area", id, command); err != nil {
		return fmt.Errorf("could not %s area %s: %w", command, id, err)
	}
	return nil
}
