package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reDigits = regexp.MustCompile(`\d+`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// FirstInt returns the first run of ASCII digits in s, scanning left to right.
func FirstInt(s string) int {
	m := reDigits.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
