package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/focuspulse/internal/model"
)

const (
	barFull             = '█'
	barEmpty            = '·'
	minBarWidth         = 10
	barLabelWidth       = len("Sun 2006-01-02 ")
	barValueWidth       = len(" 24.0h")
	colorBar            = "\x1b[36m"
	colorToday          = "\x1b[33m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// BarWidthFor computes the bar area that fits within the total available width.
func BarWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	width := totalWidth - barLabelWidth - barValueWidth
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

// RenderWeekChart draws one horizontal bar per day, scaled to the busiest day.
// today is highlighted when it falls inside the week.
func RenderWeekChart(w io.Writer, buckets []model.DayBucket, today model.Date, totalWidth int, forceColor bool) error {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	width := BarWidthFor(totalWidth)
	useColor := shouldUseColor(w, forceColor)

	var maxSecs int64
	for _, b := range buckets {
		if b.Seconds > maxSecs {
			maxSecs = b.Seconds
		}
	}
	todayStr := today.String()
	for _, b := range buckets {
		filled := 0
		if maxSecs > 0 {
			filled = int(float64(b.Seconds) / float64(maxSecs) * float64(width))
		}
		if b.Seconds > 0 && filled == 0 {
			filled = 1
		}
		bar := strings.Repeat(string(barFull), filled) + strings.Repeat(string(barEmpty), width-filled)
		if useColor {
			color := colorBar
			if b.Date == todayStr {
				color = colorToday
			}
			bar = color + bar + colorReset
		}
		if _, err := fmt.Fprintf(w, "%s %s %s %5.1fh\n", b.Day, b.Date, bar, b.Hours); err != nil {
			return err
		}
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
