package dialog

import (
	"strconv"
	"strings"

	"github.com/aretw0/kinder/pkg/messages"
)

// Age bounds are exclusive.
const (
	MinAge = 12
	MaxAge = 90
)

func digits(s string) bool {
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

// number parses a non-negative decimal without sign or spaces.
func number(s string) (int, bool) {
	if !digits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validAge(s string) bool {
	n, ok := number(s)
	return ok && n > MinAge && n < MaxAge
}

func validGender(s string) bool {
	return s == "1" || s == "2"
}

func validCity(s string) bool {
	_, ok := number(s)
	return ok
}

func validStatus(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '5'
}

func validFinal(s string) bool {
	return messages.IsCommand(s, messages.CommandNext) || messages.IsCommand(s, messages.CommandRestart)
}

func validAgain(s string) bool {
	return messages.IsCommand(s, messages.CommandRestart)
}

func always(string) bool { return true }

func normalize(s string) string {
	return strings.TrimSpace(s)
}
