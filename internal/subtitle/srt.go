package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/subedit/internal/text"
)

var timestampRegex = regexp.MustCompile(
	`^(\d{2,}):([0-5]\d):([0-5]\d),(\d{3})\s+-->\s+(\d{2,}):([0-5]\d):([0-5]\d),(\d{3})$`,
)

// parses SubRip data into a Subtitle with ids renumbered 1..N
//
// Blocks are separated by blank lines. A blank line that is not followed by
// another block header stays part of the current block's content.
func Decode(data []byte) (*Subtitle, error) {
	lines := splitSource(data)

	var segments []Segment
	i := 0
	for i < len(lines) {
		if isBlank(lines[i]) {
			i++
			continue
		}

		start := i
		i++
		// header: index + timestamp
		if i < len(lines) && !isBlank(lines[i]) {
			i++
		}
		for i < len(lines) {
			if isBlank(lines[i]) && blockEndsAt(lines, i) {
				break
			}
			i++
		}

		seg, err := parseBlock(trimTrailingBlank(lines[start:i]), start+1)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return New(segments), nil
}

func parseBlock(block []string, lineNum int) (Segment, error) {
	indexLine := strings.TrimSpace(block[0])
	index, err := strconv.Atoi(indexLine)
	if err != nil || index < 1 {
		return Segment{}, &ParseError{
			Kind: BadIndex,
			Line: lineNum,
			Text: block[0],
		}
	}

	if len(block) < 2 {
		return Segment{}, &ParseError{
			Kind: Truncated,
			Line: lineNum,
			Text: block[0],
		}
	}

	start, end, err := parseTimestampLine(block[1])
	if err != nil {
		return Segment{}, &ParseError{
			Kind: BadTimestamp,
			Line: lineNum + 1,
			Text: block[1],
		}
	}

	return Segment{
		StartTime: start,
		EndTime:   end,
		Lines:     append([]string{}, block[2:]...),
	}, nil
}

func parseTimestampLine(line string) (time.Duration, time.Duration, error) {
	matches := timestampRegex.FindStringSubmatch(strings.TrimSpace(line))
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("malformed timestamp line %q", line)
	}
	start, err := parseTimestamp(
		matches[1], matches[2], matches[3], matches[4],
	)
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	end, err := parseTimestamp(
		matches[5], matches[6], matches[7], matches[8],
	)
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

func parseTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	rest := time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
	if h < 0 || time.Duration(h) > (maxDuration-rest)/time.Hour {
		return 0, fmt.Errorf("hours out of range: %d", h)
	}
	return time.Duration(h)*time.Hour + rest, nil
}

const maxDuration = time.Duration(1<<63 - 1)

// HH:MM:SS,mmm rounded to the nearest millisecond
func FormatTimestamp(d time.Duration) string {
	d = d.Round(time.Millisecond)
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// serializes segments to SubRip
type Encoder struct {
	// applied to every line before emptiness filtering; nil keeps lines as-is
	Normalize func(string) string
}

// encoder backed by the default line normalizer
func NewEncoder() *Encoder {
	return &Encoder{Normalize: text.Normalize}
}

// Encode with the default encoder
func Encode(sub *Subtitle) ([]byte, error) {
	return NewEncoder().Encode(sub)
}

// renders sub to SubRip. Ids are emitted as position+1. A segment whose
// lines all normalize to empty fails the whole encode with *ValidationError.
func (e *Encoder) Encode(sub *Subtitle) ([]byte, error) {
	var buf bytes.Buffer
	if sub == nil {
		return buf.Bytes(), nil
	}

	for i, seg := range sub.Segments {
		lines := e.contentLines(seg)
		if len(lines) == 0 {
			return nil, &ValidationError{ID: i + 1}
		}

		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteByte('\n')
		buf.WriteString(FormatTimestamp(seg.StartTime))
		buf.WriteString(" --> ")
		buf.WriteString(FormatTimestamp(seg.EndTime))
		buf.WriteByte('\n')
		for _, line := range lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func (e *Encoder) contentLines(seg Segment) []string {
	raw := SplitLines(seg.Text())
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if e.Normalize != nil {
			line = e.Normalize(line)
		}
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// reads and decodes a SubRip file
func ReadFile(path string) (*Subtitle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	sub, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return sub, nil
}

// encodes and writes a SubRip file, creating parent directories
func WriteFile(sub *Subtitle, path string) error {
	data, err := Encode(sub)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func splitSource(data []byte) []string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// reports whether the blank line at i closes the current block: the input
// ends, or the next non-blank line starts a new block header
func blockEndsAt(lines []string, i int) bool {
	j := i
	for j < len(lines) && isBlank(lines[j]) {
		j++
	}
	if j == len(lines) {
		return true
	}
	if _, err := strconv.Atoi(strings.TrimSpace(lines[j])); err == nil {
		return true
	}
	return j+1 < len(lines) && strings.Contains(lines[j+1], "-->")
}

func trimTrailingBlank(block []string) []string {
	for len(block) > 1 && isBlank(block[len(block)-1]) {
		block = block[:len(block)-1]
	}
	return block
}
