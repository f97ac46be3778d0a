// Package notify sends desktop notifications for finished sessions and streaks.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// AppName is shown by notification daemons that display a sender.
const AppName = "FocusPulse"

// Milestones are the streak lengths, in days, that trigger a streak alert.
var Milestones = []int{3, 7, 14, 30, 60, 100}

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the platform notification service.
type Desktop struct {
	// Sound uses beeep.Alert, which also plays the system sound.
	Sound bool
}

// NewDesktop returns a desktop notifier.
func NewDesktop(sound bool) *Desktop {
	beeep.AppName = AppName
	return &Desktop{Sound: sound}
}

// Notify implements Notifier.
func (d *Desktop) Notify(title, message string) error {
	if d.Sound {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

type nop struct{}

// Nop returns a Notifier that does nothing.
func Nop() Notifier { return nop{} }

func (nop) Notify(string, string) error { return nil }

// IsMilestone reports whether a streak of days should be celebrated.
func IsMilestone(days int) bool {
	for _, m := range Milestones {
		if m == days {
			return true
		}
	}
	return false
}

// SessionEnded formats the end-of-session notification.
func SessionEnded(title, focus string) (string, string) {
	return "Session complete", fmt.Sprintf("%s: %s of focus", title, focus)
}

// StreakReached formats the streak milestone notification.
func StreakReached(days int) (string, string) {
	return "Streak milestone", fmt.Sprintf("%d days in a row. Keep it going!", days)
}
