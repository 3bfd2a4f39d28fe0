package allowlist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseError is returned by Load when a non-comment line of the allow-list
// file is not a valid user ID. The whole load fails, a partial list could
// grant or deny access to the wrong users.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q is not a valid user ID", e.Line, e.Text)
}

// List is an immutable set of user IDs allowed to use the bot.
type List struct {
	ids map[int64]struct{}
}

// Load method reads the allow-list file at the given path and parses it
// into a List. Every line is trimmed, empty lines and lines starting with
// '#' are skipped and any other line must be a base-10 integer user ID.
// Duplicated IDs are collapsed. It returns an error if the file can not be
// read or if any line fails to parse.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading allowed users file: %w", err)
	}
	list := &List{ids: make(map[int64]struct{})}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for row := 1; scanner.Scan(); row++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: row, Text: line}
		}
		list.ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading allowed users file: %w", err)
	}
	return list, nil
}

// IsAllowed method checks if the given user ID is in the list.
func (l *List) IsAllowed(userID int64) bool {
	_, exists := l.ids[userID]
	return exists
}

// Len method returns the number of allowed users.
func (l *List) Len() int {
	return len(l.ids)
}
