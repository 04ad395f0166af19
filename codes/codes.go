// Package codes generates the human-facing property codes (AP-001, CA-015, ...).
package codes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/barretodotcom/inmocrm/db"
)

var ErrMalformed = errors.New("malformed property code")

var prefixes = map[string]string{
	"apartment":     "AP",
	"apartaestudio": "AE",
	"house":         "CA",
	"office":        "OF",
	"commercial":    "LC",
}

const fallbackPrefix = "PR"

func PrefixFor(propertyType string) string {
	if p, ok := prefixes[strings.ToLower(strings.TrimSpace(propertyType))]; ok {
		return p
	}
	return fallbackPrefix
}

// Format pads to three digits; wider numbers are kept whole.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

func Parse(code string) (prefix string, n int, err error) {
	i := strings.LastIndex(code, "-")
	if i <= 0 || i == len(code)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, code)
	}
	digits := code[i+1:]
	if strings.TrimLeft(digits, "0123456789") != "" {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, code)
	}
	n, err = strconv.Atoi(digits)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, code)
	}
	return code[:i], n, nil
}

// Next returns the number following the highest code under prefix.
func Next(prefix string, existing []string) int {
	highest := 0
	for _, c := range existing {
		p, n, err := Parse(c)
		if err != nil || p != prefix {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

type Candidate struct {
	ID    int64
	Title string
	Type  string
	Code  string
}

type Assignment struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Code   string `json:"code"`
	Reused bool   `json:"reused"` // already had a code, left untouched
}

// Plan assigns codes to candidates without one. Numbering per prefix
// continues after the highest code already present, so planned codes never
// collide with existing ones. Input order decides numbering order.
func Plan(props []Candidate) []Assignment {
	taken := map[string][]string{}
	for _, p := range props {
		if p.Code == "" {
			continue
		}
		if prefix, _, err := Parse(p.Code); err == nil {
			taken[prefix] = append(taken[prefix], p.Code)
		}
	}

	next := map[string]int{}
	out := make([]Assignment, 0, len(props))
	for _, p := range props {
		a := Assignment{ID: p.ID, Title: p.Title, Type: p.Type}
		if p.Code != "" {
			a.Code = p.Code
			a.Reused = true
			out = append(out, a)
			continue
		}
		prefix := PrefixFor(p.Type)
		if _, ok := next[prefix]; !ok {
			next[prefix] = Next(prefix, taken[prefix])
		}
		a.Code = Format(prefix, next[prefix])
		next[prefix]++
		out = append(out, a)
	}
	return out
}

type CoverageStats struct {
	WithCode    int `json:"withCode"`
	WithoutCode int `json:"withoutCode"`
	Total       int `json:"total"`
}

func Coverage(props []Candidate) CoverageStats {
	var c CoverageStats
	for _, p := range props {
		if p.Code != "" {
			c.WithCode++
		} else {
			c.WithoutCode++
		}
	}
	c.Total = len(props)
	return c
}

// GroupByType counts candidates per property type.
func GroupByType(props []Candidate) map[string]int {
	out := map[string]int{}
	for _, p := range props {
		out[p.Type]++
	}
	return out
}

// FromProperties keeps the store order, which is id order for ListProperties.
func FromProperties(props []db.Property) []Candidate {
	out := make([]Candidate, 0, len(props))
	for _, p := range props {
		c := Candidate{ID: p.ID, Title: p.Title, Type: p.Type}
		if p.Code != nil {
			c.Code = strings.TrimSpace(*p.Code)
		}
		out = append(out, c)
	}
	return out
}
