package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/talentflow/internal/ui/theme"
)

// ProgressBar displays how many visible questions have an answer.
type ProgressBar struct {
	Label    string
	Answered int
	Total    int
	Width    int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, answered, total, width int) ProgressBar {
	return ProgressBar{
		Label:    label,
		Answered: answered,
		Total:    total,
		Width:    width,
	}
}

// Percent returns the completed fraction in [0, 1]. An empty form is
// complete.
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 1
	}
	f := float64(p.Answered) / float64(p.Total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	counter := fmt.Sprintf("  %d/%d", p.Answered, p.Total)
	barWidth := p.Width - lipgloss.Width(result) - len(counter)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += theme.Subtitle.Render(counter)

	return result
}
