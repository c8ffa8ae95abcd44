package chem

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ArrowPattern matches the rate arrow of a reaction line: "->", "-2>", "-0.5>".
// The captured group is the rate text, empty when omitted.
var ArrowPattern = regexp.MustCompile(`-([0-9]*\.?[0-9]*)>`)

const maxLineBytes = 1 << 20

// Parse reads a network from .chem text.
func Parse(text string) (*Network, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader reads a network from .chem formatted input.
//
// Each non-blank line not starting with '#' must hold exactly one arrow.
// Species are separated by '+', and surrounding whitespace is ignored.
// Malformed lines, non-positive rates, duplicate reactions and reactions
// whose reactants equal their products are reported as format errors
// carrying the line number.
func ParseReader(r io.Reader) (*Network, error) {
	var entries []Entry
	lines := make(map[ReactionKey]int)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reactants, rate, products, err := ParseReactionLine(line)
		if err != nil {
			return nil, NewFormatError(lineNo, fmt.Sprintf("%v: %q", err, line), err)
		}
		if !(rate > 0) {
			return nil, NewFormatError(lineNo, fmt.Sprintf("rate %v: %q", rate, line), ErrNonPositiveRate)
		}
		rx := NewReaction(reactants, products)
		if rx.Elastic() {
			return nil, NewFormatError(lineNo, fmt.Sprintf("%q", line), ErrElasticReaction)
		}
		k := rx.Key()
		if first, dup := lines[k]; dup {
			return nil, NewFormatError(lineNo, fmt.Sprintf("%q already defined at line %d", line, first), ErrDuplicateReaction)
		}
		lines[k] = lineNo
		entries = append(entries, Entry{Reactants: reactants, Products: products, Rate: rate})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	return New(entries)
}

// ParseReactionLine splits "A + B -2> C" into reactants, rate and products.
// An omitted rate reads as 1.
func ParseReactionLine(line string) ([]Species, float64, []Species, error) {
	locs := ArrowPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) != 1 {
		return nil, 0, nil, fmt.Errorf("expected exactly one reaction arrow, found %d", len(locs))
	}
	loc := locs[0]
	rate, err := ParseRate(line[loc[2]:loc[3]])
	if err != nil {
		return nil, 0, nil, err
	}
	return SplitSpecies(line[:loc[0]]), rate, SplitSpecies(line[loc[1]:]), nil
}

// ParseRate parses the text captured inside an arrow. Empty text is 1.
func ParseRate(s string) (float64, error) {
	if s == "" {
		return 1.0, nil
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	return rate, nil
}
