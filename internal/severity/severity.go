// Package severity classifies caption lines by rendered width so editors
// can flag lines that will not fit on screen.
package severity

import "github.com/mgpai22/subedit/internal/subtitle"

// Tier is ordered: a larger value is more severe.
type Tier int

const (
	Normal Tier = iota
	Caution
	Warning
	Severe
)

// breakpoints, inclusive upper bounds
const (
	NormalMaxWidth  = 36
	CautionMaxWidth = 39
	WarningMaxWidth = 45
)

// segments with more lines than this are Severe regardless of width
const MaxLines = 2

// String returns the tier name as shown to editors, e.g. "Warning".
func (t Tier) String() string {
	switch t {
	case Normal:
		return "Normal"
	case Caution:
		return "Caution"
	case Warning:
		return "Warning"
	case Severe:
		return "Severe"
	default:
		return "unknown"
	}
}

func Classify(width int) Tier {
	switch {
	case width <= NormalMaxWidth:
		return Normal
	case width <= CautionMaxWidth:
		return Caution
	case width <= WarningMaxWidth:
		return Warning
	default:
		return Severe
	}
}

func Max(a, b Tier) Tier {
	if a > b {
		return a
	}
	return b
}

// folds a segment's lines into one tier: the most severe line wins, and
// more than MaxLines lines floors the result at Severe
func ForLines(lines []string, width func(string) int) Tier {
	tier := Normal
	if len(lines) > MaxLines {
		tier = Severe
	}
	for _, line := range lines {
		if tier == Severe {
			break
		}
		tier = Max(tier, Classify(width(line)))
	}
	return tier
}

// per-segment classification
type Finding struct {
	ID    int
	Tier  Tier
	Width int // widest line
	Lines int
}

// classifies every segment of sub
func Check(sub *subtitle.Subtitle, width func(string) int) []Finding {
	findings := make([]Finding, 0, sub.Len())
	for _, seg := range sub.Segments {
		widest := 0
		for _, line := range seg.Lines {
			if w := width(line); w > widest {
				widest = w
			}
		}
		findings = append(findings, Finding{
			ID:    seg.ID,
			Tier:  ForLines(seg.Lines, width),
			Width: widest,
			Lines: len(seg.Lines),
		})
	}
	return findings
}

// highest tier among findings
func Worst(findings []Finding) Tier {
	tier := Normal
	for _, f := range findings {
		tier = Max(tier, f.Tier)
	}
	return tier
}
