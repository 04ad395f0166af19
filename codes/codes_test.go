package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixFor(t *testing.T) {
	cases := map[string]string{
		"apartment":     "AP",
		"apartaestudio": "AE",
		"house":         "CA",
		" House ":       "CA",
		"office":        "OF",
		"commercial":    "LC",
		"lot":           "PR",
		"":              "PR",
	}
	for typ, want := range cases {
		assert.Equal(t, want, PrefixFor(typ), typ)
	}
}

func TestFormatParse(t *testing.T) {
	assert.Equal(t, "CA-001", Format("CA", 1))
	assert.Equal(t, "AP-015", Format("AP", 15))
	assert.Equal(t, "OF-1234", Format("OF", 1234))

	for _, n := range []int{1, 9, 10, 99, 100, 999, 1000} {
		prefix, got, err := Parse(Format("LC", n))
		require.NoError(t, err)
		assert.Equal(t, "LC", prefix)
		assert.Equal(t, n, got)
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, code := range []string{"", "CA", "CA-", "-001", "CA-abc", "CA-+5", "CA-1a"} {
		_, _, err := Parse(code)
		assert.ErrorIs(t, err, ErrMalformed, code)
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, 1, Next("CA", nil))
	assert.Equal(t, 3, Next("CA", []string{"CA-001", "CA-002"}))
	assert.Equal(t, 8, Next("CA", []string{"CA-007", "CA-002", "AP-050", "garbage", "CA-x"}))
	assert.Equal(t, 51, Next("AP", []string{"CA-007", "AP-050"}))
}

func TestPlan(t *testing.T) {
	props := []Candidate{
		{ID: 1, Type: "house", Code: "CA-002"},
		{ID: 2, Type: "house"},
		{ID: 3, Type: "apartment"},
		{ID: 4, Type: "house"},
		{ID: 5, Type: "warehouse"},
		{ID: 6, Type: "apartment", Code: "AP-001"},
	}

	plan := Plan(props)
	require.Len(t, plan, len(props))

	got := map[int64]string{}
	for _, a := range plan {
		got[a.ID] = a.Code
	}
	assert.Equal(t, "CA-002", got[1])
	assert.Equal(t, "CA-003", got[2])
	assert.Equal(t, "AP-002", got[3])
	assert.Equal(t, "CA-004", got[4])
	assert.Equal(t, "PR-001", got[5])
	assert.True(t, plan[0].Reused)
	assert.False(t, plan[1].Reused)

	seen := map[string]bool{}
	for _, a := range plan {
		assert.False(t, seen[a.Code], "duplicate code %s", a.Code)
		seen[a.Code] = true
	}
}

func TestCoverageAndGroupByType(t *testing.T) {
	props := []Candidate{
		{Type: "house", Code: "CA-001"},
		{Type: "house"},
		{Type: "office"},
	}
	assert.Equal(t, CoverageStats{WithCode: 1, WithoutCode: 2, Total: 3}, Coverage(props))
	assert.Equal(t, map[string]int{"house": 2, "office": 1}, GroupByType(props))
}
