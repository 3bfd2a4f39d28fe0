package bot

import (
	"fmt"
	"strings"
)

const (
	// commands
	START_CMD = "/start"
	HELP_CMD  = "/help"
	ID_CMD    = "/id"
	// descriptions
	START_DESC = "Check your access."
	HELP_DESC  = "Show this help."
	ID_DESC    = "Show your Telegram ID."
	// messages
	AccessGrantedMessage = "Login successful"
	AccessDeniedMessage  = "Access denied"
	UsageHintMessage     = "Use /start to check your access or /id to get your Telegram ID."
	// headers
	HelpHeader = "Available commands:"
	// templates
	HelperCommandTemplate = " %s: %s"
	IDTemplate            = "Your Telegram ID: %d"
)

// helpMessage composes the static list of supported commands.
func helpMessage() string {
	lines := []string{
		HelpHeader,
		fmt.Sprintf(HelperCommandTemplate, START_CMD, START_DESC),
		fmt.Sprintf(HelperCommandTemplate, HELP_CMD, HELP_DESC),
		fmt.Sprintf(HelperCommandTemplate, ID_CMD, ID_DESC),
	}
	return strings.Join(lines, "\n")
}
