package bot

import (
	"context"
	"fmt"
	"log"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zabbixgate/allowlist"
)

// sender covers the part of the telegram api used to reply to messages,
// so handlers can be tested without the network.
type sender interface {
	Send(c tgapi.Chattable) (tgapi.Message, error)
}

type BotConfig struct {
	Token        string
	AllowedUsers *allowlist.Holder
}

type Bot struct {
	// config
	token string
	// users
	allowedUsers *allowlist.Holder
	// context
	ctx    context.Context
	cancel context.CancelFunc
	// third party apis
	api *tgapi.BotAPI
	out sender
}

func New(ctx context.Context, config BotConfig) *Bot {
	// create a new context for the bot and initialize it
	botCtx, cancel := context.WithCancel(ctx)
	return &Bot{
		token:        config.Token,
		allowedUsers: config.AllowedUsers,
		ctx:          botCtx,
		cancel:       cancel,
	}
}

// Start method starts the bot and returns an error if something goes wrong.
// It starts a goroutine that listens to the updates from the bot and
// dispatches every incoming message to the corresponding command handler.
func (b *Bot) Start() error {
	// init bot api and attach it to the current bot instance
	var err error
	b.api, err = tgapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("error creating telegram bot api: %w", err)
	}
	b.out = b.api
	log.Printf("bot started as @%s (%d)", b.api.Self.UserName, b.api.Self.ID)
	// config the updates channel
	u := tgapi.NewUpdate(0)
	u.Timeout = 60
	updateChan := b.api.GetUpdatesChan(u)
	// get updates from the bot in background
	go func() {
		for {
			select {
			case <-b.ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case update := <-updateChan:
				b.handleUpdate(update)
			}
		}
	}()
	return nil
}

// Stop method stops the bot.
func (b *Bot) Stop() {
	b.cancel()
}

// Wait method blocks until the bot is stopped.
func (b *Bot) Wait() {
	<-b.ctx.Done()
}

// handleUpdate method dispatches a single incoming message. Every message
// is handled independently, no state carries between them.
func (b *Bot) handleUpdate(update tgapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		// nothing to authorize or reply to without a sender
		return
	}
	switch parseCommand(msg.Text) {
	case CmdStart:
		if b.allowedUsers.Current().IsAllowed(msg.From.ID) {
			log.Printf("authorized user %d", msg.From.ID)
			b.reply(msg.Chat.ID, AccessGrantedMessage)
		} else {
			log.Printf("unauthorized user %d", msg.From.ID)
			b.reply(msg.Chat.ID, AccessDeniedMessage)
		}
	case CmdHelp:
		// listing the commands is not privileged, reply to everyone
		b.reply(msg.Chat.ID, helpMessage())
	case CmdID:
		// /id works without authorization on purpose, new users need it to
		// discover the ID to be added to the allow-list
		b.reply(msg.Chat.ID, fmt.Sprintf(IDTemplate, msg.From.ID))
	default:
		b.reply(msg.Chat.ID, UsageHintMessage)
	}
}

// reply method sends a plain text message to the given chat. A failed send
// is logged and never stops the update loop.
func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.out.Send(tgapi.NewMessage(chatID, text)); err != nil {
		log.Printf("error sending message to chat %d: %s", chatID, err)
	}
}
