package core

import "strings"

// splitLine strips the '\n' terminator and splits on ','. A carriage return
// anywhere in the line is rejected. An empty line yields no cells.
func splitLine(line string) ([]string, error) {
	line = strings.TrimSuffix(line, "\n")
	if strings.Contains(line, "\r") {
		return nil, structural(MsgLineEnding)
	}
	if line == "" {
		return nil, nil
	}
	return strings.Split(line, ","), nil
}

// ParseRow splits a data line and checks it has one cell per header column.
func ParseRow(line string, width int) ([]string, error) {
	cells, err := splitLine(line)
	if err != nil {
		return nil, err
	}
	switch {
	case len(cells) < width:
		return nil, structural(MsgMissingValues)
	case len(cells) > width:
		return nil, structural(MsgTooManyValues)
	}
	return cells, nil
}
