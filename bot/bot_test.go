package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zabbixgate/allowlist"
)

// fakeSender records every message the bot tries to send and can simulate
// transport failures.
type fakeSender struct {
	sent []tgapi.MessageConfig
	fail bool
}

func (f *fakeSender) Send(c tgapi.Chattable) (tgapi.Message, error) {
	if f.fail {
		return tgapi.Message{}, errors.New("transport failure")
	}
	msg, ok := c.(tgapi.MessageConfig)
	if !ok {
		return tgapi.Message{}, errors.New("unexpected chattable type")
	}
	f.sent = append(f.sent, msg)
	return tgapi.Message{}, nil
}

func newTestBot(t *testing.T, allowedIDs string) (*Bot, *fakeSender) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowed_users.txt")
	if err := os.WriteFile(path, []byte(allowedIDs), 0o644); err != nil {
		t.Fatal(err)
	}
	holder, err := allowlist.NewHolder(path)
	if err != nil {
		t.Fatal(err)
	}
	out := &fakeSender{}
	b := New(context.Background(), BotConfig{Token: "test-token", AllowedUsers: holder})
	b.out = out
	return b, out
}

func update(userID, chatID int64, text string) tgapi.Update {
	return tgapi.Update{Message: &tgapi.Message{
		Text: text,
		From: &tgapi.User{ID: userID},
		Chat: &tgapi.Chat{ID: chatID},
	}}
}

func lastReply(t *testing.T, out *fakeSender) tgapi.MessageConfig {
	t.Helper()
	if len(out.sent) == 0 {
		t.Fatal("expected a reply, got none")
	}
	return out.sent[len(out.sent)-1]
}

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"/start":         CmdStart,
		"/start@GateBot": CmdStart,
		"/start now":     CmdStart,
		"  /help  ":      CmdHelp,
		"/id":            CmdID,
		"/Start":         CmdUnknown,
		"/settle":        CmdUnknown,
		"hello":          CmdUnknown,
		"":               CmdUnknown,
		"text with /id":  CmdUnknown,
	}
	for text, expected := range cases {
		if cmd := parseCommand(text); cmd != expected {
			t.Errorf("parseCommand(%q): expected %d, got %d", text, expected, cmd)
		}
	}
}

func TestHandleStart(t *testing.T) {
	b, out := newTestBot(t, "# comment\n12345\n\n67890\n")
	// an allowed user gets the access confirmation
	b.handleUpdate(update(12345, 100, "/start"))
	granted := lastReply(t, out)
	if granted.Text != AccessGrantedMessage {
		t.Errorf("expected %q, got %q", AccessGrantedMessage, granted.Text)
	}
	if granted.ChatID != 100 {
		t.Errorf("expected reply to chat 100, got %d", granted.ChatID)
	}
	// an unknown user gets the generic denial
	b.handleUpdate(update(999, 101, "/start"))
	denied := lastReply(t, out)
	if denied.Text != AccessDeniedMessage {
		t.Errorf("expected %q, got %q", AccessDeniedMessage, denied.Text)
	}
	if denied.Text == granted.Text {
		t.Error("expected denied and granted replies to differ")
	}
	// neither reply leaks the allow-list contents
	for _, reply := range []string{granted.Text, denied.Text} {
		if strings.Contains(reply, "12345") || strings.Contains(reply, "67890") {
			t.Errorf("reply %q leaks allow-list contents", reply)
		}
	}
}

func TestHandleID(t *testing.T) {
	b, out := newTestBot(t, "12345\n")
	// /id replies with the sender ID for allowed and disallowed users alike
	for _, userID := range []int64{12345, 999} {
		b.handleUpdate(update(userID, 100, "/id"))
		reply := lastReply(t, out)
		if !strings.Contains(reply.Text, fmt.Sprintf("%d", userID)) {
			t.Errorf("expected /id reply to contain %d, got %q", userID, reply.Text)
		}
	}
}

func TestHandleHelp(t *testing.T) {
	b, out := newTestBot(t, "12345\n")
	// /help is not gated, a disallowed user gets the command list too
	b.handleUpdate(update(999, 100, "/help"))
	reply := lastReply(t, out)
	for _, cmd := range []string{START_CMD, HELP_CMD, ID_CMD} {
		if !strings.Contains(reply.Text, cmd) {
			t.Errorf("expected help to mention %s, got %q", cmd, reply.Text)
		}
	}
}

func TestHandleUnknown(t *testing.T) {
	b, out := newTestBot(t, "12345\n")
	b.handleUpdate(update(12345, 100, "what do I do?"))
	if reply := lastReply(t, out); reply.Text != UsageHintMessage {
		t.Errorf("expected usage hint, got %q", reply.Text)
	}
	// messages without a sender are ignored
	sentBefore := len(out.sent)
	b.handleUpdate(tgapi.Update{Message: &tgapi.Message{Text: "/start", Chat: &tgapi.Chat{ID: 100}}})
	b.handleUpdate(tgapi.Update{})
	if len(out.sent) != sentBefore {
		t.Errorf("expected no reply without a sender, got %d new replies", len(out.sent)-sentBefore)
	}
}

func TestSendFailureDoesNotStopDispatch(t *testing.T) {
	b, out := newTestBot(t, "12345\n")
	// a failed send is logged and the next message is still handled
	out.fail = true
	b.handleUpdate(update(12345, 100, "/start"))
	out.fail = false
	b.handleUpdate(update(12345, 100, "/id"))
	if reply := lastReply(t, out); !strings.Contains(reply.Text, "12345") {
		t.Errorf("expected dispatch to continue after a failed send, got %q", reply.Text)
	}
}
