package command

import (
	"strings"
)

// Command is a parsed input line.
type Command struct {
	Name string
	Args []string
	Raw  string
}

// Empty reports whether the line carried no command token.
func (c Command) Empty() bool {
	return c.Name == ""
}

// Parse splits a line on whitespace. The first token is the command name and
// the rest are arguments. Tokens keep their case.
func Parse(input string) Command {
	raw := strings.TrimSpace(input)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Raw: raw}
	}
	args := []string{}
	if len(fields) > 1 {
		args = fields[1:]
	}
	return Command{
		Name: fields[0],
		Args: args,
		Raw:  raw,
	}
}
