// Package clock tracks the simulation's position in the season cycle.
//
// The clock is advanced only by the evolution driver and is passed explicitly
// to every component that needs to read it, so the season, market, and
// mutation stages stay independently testable.
package clock

import "fmt"

// Half identifies which half of the season is in play.
type Half int

const (
	FirstHalf Half = iota
	SecondHalf
)

func (h Half) String() string {
	switch h {
	case FirstHalf:
		return "first"
	case SecondHalf:
		return "second"
	default:
		return "unknown"
	}
}

// Window identifies a transfer window.
type Window int

const (
	WinterWindow Window = iota
	SummerWindow
)

func (w Window) String() string {
	switch w {
	case WinterWindow:
		return "winter"
	case SummerWindow:
		return "summer"
	default:
		return "unknown"
	}
}

// Phase is one step of the seven-step season cycle.
type Phase int

const (
	PhaseFirstHalf Phase = iota
	PhaseWinterWindow
	PhaseWinterMutation
	PhaseSecondHalf
	PhaseSummerWindow
	PhaseSummerMutation
	PhaseSeasonEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseFirstHalf:
		return "first_half"
	case PhaseWinterWindow:
		return "winter_window"
	case PhaseWinterMutation:
		return "winter_mutation"
	case PhaseSecondHalf:
		return "second_half"
	case PhaseSummerWindow:
		return "summer_window"
	case PhaseSummerMutation:
		return "summer_mutation"
	case PhaseSeasonEnd:
		return "season_end"
	default:
		return "unknown"
	}
}

// InvalidTransitionError reports an attempt to skip or re-enter a phase of
// the season cycle.
type InvalidTransitionError struct {
	Season int
	From   Phase
	To     Phase
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("season %d: invalid transition %s -> %s", e.Season, e.From, e.To)
}

// Clock is the process-wide season/half/window progression state.
type Clock struct {
	season int
	phase  Phase
}

// New returns a clock positioned at the start of the given season.
func New(season int) *Clock {
	return &Clock{season: season, phase: PhaseFirstHalf}
}

// Season returns the current season number, starting at 1.
func (c *Clock) Season() int { return c.season }

// Phase returns the current step of the season cycle.
func (c *Clock) Phase() Phase { return c.phase }

// Half returns the half associated with the current phase. During window and
// mutation phases it returns the half that has just been played.
func (c *Clock) Half() Half {
	if c.phase <= PhaseWinterMutation {
		return FirstHalf
	}
	return SecondHalf
}

// Window returns the transfer window associated with the current phase.
func (c *Clock) Window() Window {
	if c.phase <= PhaseWinterMutation {
		return WinterWindow
	}
	return SummerWindow
}

// Advance moves the clock to the requested phase. Only the next phase in the
// cycle is legal; anything else returns an InvalidTransitionError. Advancing
// past PhaseSeasonEnd rolls over into the next season's first half.
func (c *Clock) Advance(to Phase) error {
	next := c.phase + 1
	if c.phase == PhaseSeasonEnd {
		next = PhaseFirstHalf
	}
	if to != next {
		return &InvalidTransitionError{Season: c.season, From: c.phase, To: to}
	}
	if c.phase == PhaseSeasonEnd {
		c.season++
	}
	c.phase = to
	return nil
}
