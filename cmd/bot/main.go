package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"zabbixgate/allowlist"
	"zabbixgate/bot"
)

const defaultAllowedUsersPath = "/bot/allowed_users.txt"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	// pick up a .env file if there is one next to the binary
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}
	// run the zabbix setup instead of the bot when requested via the
	// subcommand or the RUN_MODE env variable
	if (len(os.Args) > 1 && os.Args[1] == "zbx-setup") || os.Getenv("RUN_MODE") == "zbx-setup" {
		if err := runZbxSetup(); err != nil {
			log.Fatal(err)
		}
		return
	}
	// parse env variables
	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if telegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	allowedUsersPath := os.Getenv("ALLOWED_USERS_PATH")
	if allowedUsersPath == "" {
		allowedUsersPath = defaultAllowedUsersPath
	}
	// load the allow-list, an unreadable or malformed file refuses to start
	// since an empty or partial list would deny or grant access to the
	// wrong users
	allowedUsers, err := allowlist.NewHolder(allowedUsersPath)
	if err != nil {
		log.Fatalf("error loading allowed users from %s: %s", allowedUsersPath, err)
	}
	log.Printf("loaded %d allowed users from %s", allowedUsers.Current().Len(), allowedUsersPath)
	// create and start the bot
	b := bot.New(context.Background(), bot.BotConfig{
		Token:        telegramToken,
		AllowedUsers: allowedUsers,
	})
	if err := b.Start(); err != nil {
		log.Fatal(err)
	}
	// wait until an interrupt is received, a SIGHUP reloads the allow-list
	// without restarting the bot
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range c {
		if sig == syscall.SIGHUP {
			if err := allowedUsers.Reload(); err != nil {
				log.Printf("allow-list reload failed, keeping the previous one: %s", err)
			} else {
				log.Printf("allow-list reloaded, %d allowed users", allowedUsers.Current().Len())
			}
			continue
		}
		log.Printf("received %s, exiting at %s", sig, time.Now().Format(time.RFC850))
		break
	}
	// stop the bot
	b.Stop()
}
