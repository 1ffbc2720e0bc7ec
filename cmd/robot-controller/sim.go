package main

import (
	"context"
	"math"
	"time"

	"robot-controller/internal/hardware"
	"robot-controller/internal/types"
)

type simStep struct {
	control  types.ControlWord
	duration time.Duration
}

// simScript is a short practice match, played in a loop.
var simScript = []simStep{
	{types.ControlWord{}, 2 * time.Second},
	{types.ControlWord{Enabled: true, Autonomous: true}, 15 * time.Second},
	{types.ControlWord{}, 2 * time.Second},
	{types.ControlWord{Enabled: true}, 30 * time.Second},
}

// runSimConsole pushes one packet per interval into the sim station until
// ctx is done.
func runSimConsole(ctx context.Context, sim *hardware.SimStation, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	step, started := 0, time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(started) >= simScript[step].duration {
				step = (step + 1) % len(simScript)
				started = now
			}
			sim.Push(simPacket(simScript[step].control, now.Sub(started)))
		}
	}
}

func simPacket(cw types.ControlWord, elapsed time.Duration) types.OperatorSnapshot {
	cw.DSAttached = true
	snap := types.OperatorSnapshot{
		ControlWord: cw,
		Station:     types.StationRed1,
		Match: types.MatchInfo{
			EventName: "sim",
			Type:      types.MatchPractice,
		},
	}

	// Stick 0 sweeps forward and back, button 1 pressed every other second.
	js := &snap.Joysticks[0]
	js.Axes.Count = 2
	js.Axes.Axes[1] = float32(math.Sin(elapsed.Seconds()))
	js.POVs.Count = 1
	js.POVs.POVs[0] = -1
	js.Buttons.Count = 4
	if int(elapsed.Seconds())%2 == 0 {
		js.Buttons.Buttons = 1
	}
	return snap
}
