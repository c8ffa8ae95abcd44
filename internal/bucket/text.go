package bucket

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/chem"
)

var eventPattern = regexp.MustCompile(`^(.*?)-([0-9]*\.?[0-9]*)>(.*?)$`)

const maxLineBytes = 1 << 20

// Parse reads a Bucket from event-log text.
func Parse(text string, opts ...Option) (*Bucket, error) {
	return ParseReader(strings.NewReader(text), opts...)
}

// ParseReader reads a Bucket from event-log formatted input, one event per
// line:
//
//	WALLTIME SIMTIME REACTANTS -RATE> PRODUCTS
//
// A bare "->" means the event carries no explicit rate constant. Blank lines
// and lines starting with '#' are skipped. Errors are format errors carrying
// the line number.
func ParseReader(r io.Reader, opts ...Option) (*Bucket, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseEvent(line)
		if err != nil {
			return nil, chem.NewFormatError(lineNo, fmt.Sprintf("%v: %q", err, line), err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return New(events, opts...), nil
}

// ParseEvent parses a single event-log line.
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Event{}, fmt.Errorf("expected wall time, sim time and reaction")
	}
	wall, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("invalid wall time %q", fields[0])
	}
	simtime, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Event{}, fmt.Errorf("invalid sim time %q", fields[1])
	}
	reaction := strings.Join(fields[2:], " ")
	m := eventPattern.FindStringSubmatch(reaction)
	if m == nil {
		return Event{}, fmt.Errorf("missing reaction arrow")
	}
	reactants, err := splitLogSpecies(m[1])
	if err != nil {
		return Event{}, err
	}
	products, err := splitLogSpecies(m[3])
	if err != nil {
		return Event{}, err
	}
	e := NewEvent(simtime, bag.NewFrozen(reactants...), bag.NewFrozen(products...)).WithWall(wall)
	if m[2] != "" {
		rate, err := chem.ParseRate(m[2])
		if err != nil {
			return Event{}, err
		}
		e = e.WithRate(rate)
	}
	return e, nil
}

func splitLogSpecies(s string) ([]chem.Species, error) {
	species := chem.SplitSpecies(s)
	for _, sp := range species {
		if strings.ContainsAny(string(sp), " \t") || strings.Contains(string(sp), "->") {
			return nil, fmt.Errorf("invalid species %q", sp)
		}
	}
	return species, nil
}

// Text renders the bucket in event-log format, one line per event.
func (b *Bucket) Text() string {
	var sb strings.Builder
	for _, e := range b.events {
		sb.WriteString(e.Text())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the event log to w.
func (b *Bucket) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.Text())
	return int64(n), err
}
