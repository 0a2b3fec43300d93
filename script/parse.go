package script

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/larryuc/t2-iic2523/kv"
)

const maxLineSize = 1 << 20

type line struct {
	number int
	text   string
}

// readLines returns the non-empty lines of r with comments removed.
func readLines(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for n := 1; scanner.Scan(); n++ {
		if text := clean(scanner.Text()); text != "" {
			lines = append(lines, line{number: n, text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func clean(text string) string {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// splitList splits a semicolon separated header and drops empty items.
func splitList(text string) []string {
	var items []string
	for _, item := range strings.Split(text, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseNumber(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	return n, err == nil
}

func skip(skipped *multierror.Error, l line, reason string) *multierror.Error {
	return multierror.Append(skipped, &LineError{Line: l.number, Text: l.text, Reason: reason})
}

// ParsePaxos parses a Paxos case: the acceptors line, the proposers line, and
// one event per line after that. Malformed lines are recorded in Skipped and
// otherwise ignored. The only error returned is a read failure.
func ParsePaxos(r io.Reader) (*PaxosScript, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	s := &PaxosScript{}
	if len(lines) == 0 {
		return s, nil
	}
	s.Acceptors = splitList(lines[0].text)
	if len(lines) < 2 {
		return s, nil
	}
	s.Proposers = splitList(lines[1].text)

	for _, l := range lines[2:] {
		parts := strings.Split(l.text, ";")
		switch {
		case parts[0] == "Prepare" && len(parts) == 3:
			n, ok := parseNumber(parts[2])
			if !ok {
				s.Skipped = skip(s.Skipped, l, "invalid round number")
				continue
			}
			s.Events = append(s.Events, Prepare{Proposer: parts[1], Round: n})
		case parts[0] == "Accept" && len(parts) >= 4:
			n, ok := parseNumber(parts[2])
			if !ok {
				s.Skipped = skip(s.Skipped, l, "invalid round number")
				continue
			}
			payload := kv.ParseCommand(strings.Join(parts[3:], ";"))
			s.Events = append(s.Events, Accept{Proposer: parts[1], Round: n, Payload: payload})
		case parts[0] == "Learn":
			s.Events = append(s.Events, Learn{})
		case parts[0] == "Log" && len(parts) == 2:
			s.Events = append(s.Events, Log{Var: parts[1]})
		case parts[0] == "Start" && len(parts) == 2:
			s.Events = append(s.Events, Start{ID: parts[1]})
		case parts[0] == "Stop" && len(parts) == 2:
			s.Events = append(s.Events, Stop{ID: parts[1]})
		default:
			s.Skipped = skip(s.Skipped, l, "unrecognized event")
		}
	}
	return s, nil
}

// ParseRaft parses a Raft case: the node line (id or id,timeout entries) and
// one event per line after that. Malformed lines are recorded in Skipped and
// otherwise ignored. The only error returned is a read failure.
func ParseRaft(r io.Reader) (*RaftScript, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	s := &RaftScript{}
	if len(lines) == 0 {
		return s, nil
	}
	for _, tok := range splitList(lines[0].text) {
		id, timeoutText, hasTimeout := strings.Cut(tok, ",")
		spec := NodeSpec{ID: strings.TrimSpace(id)}
		if hasTimeout {
			timeout, ok := parseNumber(timeoutText)
			if !ok {
				s.Skipped = skip(s.Skipped, lines[0], "invalid timeout for node "+spec.ID+", using 0")
			}
			spec.Timeout = timeout
		}
		s.Nodes = append(s.Nodes, spec)
	}

	for _, l := range lines[1:] {
		keyword, rest, found := strings.Cut(l.text, ";")
		if !found {
			s.Skipped = skip(s.Skipped, l, "unrecognized event")
			continue
		}
		rest = strings.TrimSpace(rest)
		switch keyword {
		case "Send":
			s.Events = append(s.Events, Send{Command: kv.NormalizeCommand(rest)})
		case "Spread":
			var targets []string
			for _, t := range strings.Split(strings.Trim(rest, "[]"), ",") {
				if t = strings.TrimSpace(t); t != "" {
					targets = append(targets, t)
				}
			}
			s.Events = append(s.Events, Spread{Targets: targets})
		case "Start":
			s.Events = append(s.Events, Start{ID: rest})
		case "Stop":
			s.Events = append(s.Events, Stop{ID: rest})
		case "Log":
			s.Events = append(s.Events, Log{Var: rest})
		default:
			s.Skipped = skip(s.Skipped, l, "unrecognized event")
		}
	}
	return s, nil
}
