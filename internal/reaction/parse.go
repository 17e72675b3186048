package reaction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrParse = errors.New("reaction: parse error")

// ParseError names the malformed reaction text.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q: %s", ErrParse, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Term is a species with its stoichiometric coefficient.
type Term struct {
	Species string
	Coeff   int
}

// Parse reads "<reactants>=<products>", for example "2A+B=C". Whitespace
// is ignored and repeated species on one side are summed.
func Parse(text string) (reactants, products []Term, err error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	sides := strings.Split(s, "=")
	if len(sides) != 2 {
		return nil, nil, &ParseError{Input: text, Reason: "expected exactly one '='"}
	}
	if reactants, err = parseSide(text, sides[0]); err != nil {
		return nil, nil, err
	}
	if products, err = parseSide(text, sides[1]); err != nil {
		return nil, nil, err
	}
	return reactants, products, nil
}

func parseSide(text, side string) ([]Term, error) {
	if side == "" {
		return nil, &ParseError{Input: text, Reason: "empty side"}
	}
	var terms []Term
	pos := make(map[string]int)
	for _, part := range strings.Split(side, "+") {
		i := 0
		for i < len(part) && part[i] >= '0' && part[i] <= '9' {
			i++
		}
		coeff := 1
		if i > 0 {
			n, err := strconv.Atoi(part[:i])
			if err != nil || n <= 0 {
				return nil, &ParseError{Input: text, Reason: fmt.Sprintf("bad coefficient in %q", part)}
			}
			coeff = n
		}
		name := part[i:]
		if !validSpecies(name) {
			return nil, &ParseError{Input: text, Reason: fmt.Sprintf("bad species %q", part)}
		}
		if j, ok := pos[name]; ok {
			terms[j].Coeff += coeff
			continue
		}
		pos[name] = len(terms)
		terms = append(terms, Term{Species: name, Coeff: coeff})
	}
	return terms, nil
}

func validSpecies(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
