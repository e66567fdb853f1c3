package authflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLineFormatsKeyValuePairs(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		msg    string
		args   []any
		expect string
	}{
		{
			name:   "message only",
			level:  "INF",
			msg:    "identity backend ready\n",
			expect: "[INF] AUTHFLOW identity backend ready\n",
		},
		{
			name:   "pairs",
			level:  "ERR",
			msg:    "login failed",
			args:   []any{"identifier", "bob", "error", errors.New("bad credentials")},
			expect: "[ERR] AUTHFLOW login failed identifier=bob error=bad credentials\n",
		},
		{
			name:   "dangling value",
			level:  "DBG",
			msg:    "state",
			args:   []any{"phase", "authenticated", "extra"},
			expect: "[DBG] AUTHFLOW state phase=authenticated extra\n",
		},
		{
			name:   "percent verbs are not expanded",
			level:  "INF",
			msg:    "rate 100%s",
			args:   []any{"count", 2},
			expect: "[INF] AUTHFLOW rate 100%s count=2\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, logLine(tc.level, tc.msg, tc.args...))
		})
	}
}
