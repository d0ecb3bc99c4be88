package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"thermolab/internal/logger"
)

// Display receives rendered 16x2 frames. The stock implementation logs them;
// a character-LCD driver would implement the same interface.
type Display interface {
	Show(line1, line2 string)
}

// displayColumns is the width of the target character LCD.
const displayColumns = 16

// altEvery is how many ticks line 2 shows the temperature before flipping to
// mode+setpoint for one stretch.
const altEvery = 5

type logDisplay struct {
	log *logger.Logger
}

// NewLogDisplay returns a Display that writes frames to the debug log.
func NewLogDisplay(log *logger.Logger) Display {
	return &logDisplay{log: log}
}

func (d *logDisplay) Show(line1, line2 string) {
	d.log.Debugw("display", "line1", line1, "line2", line2)
}

// DisplayService renders the status screen: date/time on line 1, and line 2
// alternating between current temperature and mode+setpoint.
type DisplayService struct {
	mon  Monitoring
	disp Display
	log  *logger.Logger
}

func NewDisplayService(mon Monitoring, disp Display, log *logger.Logger) *DisplayService {
	return &DisplayService{mon: mon, disp: disp, log: log}
}

// Run refreshes the display every tick until ctx is canceled.
func (s *DisplayService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	counter := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.render(ctx, now, counter)
			counter++
		}
	}
}

func (s *DisplayService) render(ctx context.Context, now time.Time, counter int) {
	st, err := s.mon.GetState(ctx)
	if err != nil {
		s.log.Errorw("display_state_load_failed", "err", err)
		return
	}

	line1 := fit16(now.Format("01/02 15:04:05"))

	var line2 string
	if (counter/altEvery)%2 == 0 {
		line2 = fit16(fmt.Sprintf("Temp:%3dF", int(math.Floor(st.CurrentTempF))))
	} else {
		line2 = fit16(fmt.Sprintf("%s SP:%3dF", st.Mode, st.SetpointF))
	}

	s.disp.Show(line1, line2)
}

// fit16 truncates or pads to exactly 16 characters.
func fit16(s string) string {
	if len(s) > displayColumns {
		s = s[:displayColumns]
	}
	return fmt.Sprintf("%-*s", displayColumns, s)
}
