package main

import (
	"context"
	"fmt"
	"os"

	"zabbixgate/zbx"
)

// runZbxSetup reads the setup configuration from the environment and
// configures Zabbix to deliver alerts to Telegram directly.
func runZbxSetup() error {
	config := zbx.SetupConfig{
		APIURL:     os.Getenv("ZBX_API_URL"),
		User:       envOr("ZBX_USER", "Admin"),
		Password:   os.Getenv("ZBX_PASSWORD"),
		UserAlias:  envOr("ZBX_USER_ALIAS", "Admin"),
		ChatID:     os.Getenv("ZBX_CHAT_ID"),
		ActionName: envOr("ZBX_ACTION_NAME", "Send Telegram alerts"),
		BotToken:   envOr("TELEGRAM_BOT_TOKEN", os.Getenv("ZBX_BOT_TOKEN")),
	}
	if config.APIURL == "" {
		return fmt.Errorf("ZBX_API_URL is required, e.g. http://zabbix.local/zabbix/api_jsonrpc.php")
	}
	if config.Password == "" {
		return fmt.Errorf("ZBX_PASSWORD is required")
	}
	if config.ChatID == "" {
		return fmt.Errorf("ZBX_CHAT_ID is required, e.g. 1349552926")
	}
	return zbx.Setup(context.Background(), config)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
