package server

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxTotal caps coerced question counts. The catalog returns at most
// what it holds anyway.
const maxTotal = math.MaxInt32

// coerceInt reads a loosely typed request value as an integer. Numbers
// are truncated, strings contribute their leading integer ("3", " 12abc",
// "2.5" → 2), and anything else is 0.
func coerceInt(v any) int {
	switch v := v.(type) {
	case float64:
		switch {
		case math.IsNaN(v):
			return 0
		case v >= maxTotal:
			return maxTotal
		case v <= -maxTotal:
			return -maxTotal
		}
		return int(v)
	case string:
		return leadingInt(v)
	}
	return 0
}

func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n >= maxTotal {
			n = maxTotal
			break
		}
	}
	return sign * n
}

// coerceString renders a loosely typed request value as text. JSON null
// is the empty string.
func coerceString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
