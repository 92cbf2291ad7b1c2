package condense

import (
	"context"
	"fmt"

	"github.com/mgpai22/subedit/internal/logging"
	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
)

// Select returns the segments whose tier is at least threshold, in order.
func Select(
	sub *subtitle.Subtitle,
	width func(string) int,
	threshold severity.Tier,
) []Item {
	var items []Item
	for i, seg := range sub.Segments {
		if severity.ForLines(seg.Lines, width) >= threshold {
			items = append(items, Item{Index: i, Text: seg.Text()})
		}
	}
	return items
}

// Apply writes results back into sub. An index outside sub fails the whole
// call before anything is changed.
func Apply(sub *subtitle.Subtitle, results []Result) error {
	for _, r := range results {
		if r.Index < 0 || r.Index >= sub.Len() {
			return fmt.Errorf("result index %d out of range", r.Index)
		}
	}
	for _, r := range results {
		if err := sub.SetText(r.Index, r.Text); err != nil {
			return err
		}
	}
	return nil
}

type Report struct {
	Selected int
	Changed  int
	// segments still at or above the threshold after rewriting
	Remaining int
}

// Run condenses every segment at or above threshold in place.
func Run(
	ctx context.Context,
	c Condenser,
	sub *subtitle.Subtitle,
	width func(string) int,
	threshold severity.Tier,
	logger *logging.Logger,
) (Report, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	items := Select(sub, width, threshold)
	report := Report{Selected: len(items)}
	if len(items) == 0 {
		logger.Infow("nothing to condense", "threshold", threshold)
		return report, nil
	}

	logger.Infow("condensing", "segments", len(items), "threshold", threshold)
	results, err := c.Condense(ctx, items)
	if err != nil {
		return report, fmt.Errorf("condense failed: %w", err)
	}

	before := make(map[int]string, len(items))
	for _, it := range items {
		before[it.Index] = it.Text
	}
	if err := Apply(sub, results); err != nil {
		return report, err
	}

	for _, r := range results {
		if before[r.Index] != sub.Segments[r.Index].Text() {
			report.Changed++
		}
	}
	report.Remaining = len(Select(sub, width, threshold))

	logger.Infow("condensed",
		"changed", report.Changed,
		"remaining", report.Remaining,
	)
	return report, nil
}
