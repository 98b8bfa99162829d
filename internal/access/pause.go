package access

import (
	"fmt"
	"strings"

	"github.com/swell-network/swell-core/internal/events"
)

// Category is one of the four independent pause toggles.
type Category int

const (
	Core Category = iota
	Bot
	Operator
	Withdrawals
)

// Categories lists every pause category.
var Categories = []Category{Core, Bot, Operator, Withdrawals}

func (c Category) String() string {
	switch c {
	case Core:
		return "core"
	case Bot:
		return "bot"
	case Operator:
		return "operator"
	case Withdrawals:
		return "withdrawals"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory parses a category name as printed by String.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) valid() bool {
	return c >= Core && c <= Withdrawals
}

// event returns the log announcing the category's new status.
func (c Category) event(paused bool) events.Event {
	switch c {
	case Core:
		return events.CoreMethodsPause{NewPausedStatus: paused}
	case Bot:
		return events.BotMethodsPause{NewPausedStatus: paused}
	case Operator:
		return events.OperatorMethodsPause{NewPausedStatus: paused}
	default:
		return events.WithdrawalsPause{NewPausedStatus: paused}
	}
}

// PauseState holds the four pause flags.
type PauseState struct {
	Core        bool `json:"core"`
	Bot         bool `json:"bot"`
	Operator    bool `json:"operator"`
	Withdrawals bool `json:"withdrawals"`
}

// AllPaused is the state at construction.
func AllPaused() PauseState {
	return PauseState{Core: true, Bot: true, Operator: true, Withdrawals: true}
}

// Get returns the flag for c.
func (p PauseState) Get(c Category) bool {
	switch c {
	case Core:
		return p.Core
	case Bot:
		return p.Bot
	case Operator:
		return p.Operator
	default:
		return p.Withdrawals
	}
}

func (p *PauseState) set(c Category, v bool) {
	switch c {
	case Core:
		p.Core = v
	case Bot:
		p.Bot = v
	case Operator:
		p.Operator = v
	default:
		p.Withdrawals = v
	}
}
