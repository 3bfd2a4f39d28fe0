package bot

import "strings"

// Command enumerates the commands the bot understands. Any input that does
// not match one of them maps to CmdUnknown, there is no silent fallthrough.
type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdHelp
	CmdID
)

// parseCommand extracts the command from the message text: the first
// whitespace-delimited token, with an optional @botname suffix stripped,
// matched case-sensitively.
func parseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return CmdUnknown
	}
	token, _, _ := strings.Cut(fields[0], "@")
	switch token {
	case START_CMD:
		return CmdStart
	case HELP_CMD:
		return CmdHelp
	case ID_CMD:
		return CmdID
	}
	return CmdUnknown
}
