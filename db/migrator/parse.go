package migrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError represents a malformed migration file. It is surfaced before any
// SQL executes.
type ParseError struct {
	File string
	Msg  string
}

// Error returns a string representation of the error.
func (e ParseError) Error() string {
	return fmt.Sprintf("invalid migration file '%s': %s", e.File, e.Msg)
}

var filenameRx = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Parse splits a migration file into its up and down statement batches.
//
// The expected format is a sequence of `-- up` and `-- down` directive lines,
// each followed by a single SQL statement spanning all lines up to the next
// directive or the end of the file. Comment and blank lines before the first
// directive are allowed and ignored; any other content there is an error.
// Statements that are blank after trimming are discarded.
func Parse(filename string, data []byte) (*Migration, error) {
	match := filenameRx.FindStringSubmatch(filename)
	if match == nil {
		return nil, &ParseError{File: filename, Msg: "filename must match '<version>_<name>.sql'"}
	}

	version, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return nil, &ParseError{File: filename, Msg: fmt.Sprintf("invalid version prefix: %s", err)}
	}

	m := &Migration{
		Version: version,
		Name:    strings.TrimSuffix(filename, ".sql"),
	}

	var (
		direction Direction
		stmt      []string
	)
	flush := func() {
		text := strings.TrimSpace(strings.Join(stmt, "\n"))
		stmt = nil
		if text == "" {
			return
		}
		switch direction {
		case DirectionUp:
			m.Up = append(m.Up, text)
		case DirectionDown:
			m.Down = append(m.Down, text)
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		switch strings.TrimRight(line, " \t\r") {
		case "-- up":
			flush()
			direction = DirectionUp
			continue
		case "-- down":
			flush()
			direction = DirectionDown
			continue
		}

		if direction == "" {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				return nil, &ParseError{File: filename, Msg: "statement before the first '-- up' or '-- down' directive"}
			}
			continue
		}

		stmt = append(stmt, line)
	}
	flush()

	if len(m.Up) == 0 {
		return nil, &ParseError{File: filename, Msg: "no up statements"}
	}

	return m, nil
}
