package zbx

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// SetupConfig collects everything needed to wire Telegram alert delivery
// into a Zabbix instance.
type SetupConfig struct {
	APIURL     string
	User       string
	Password   string
	UserAlias  string
	ChatID     string
	ActionName string
	// BotToken is optional, the media type token update is skipped when it
	// is empty.
	BotToken string
}

type mediaType struct {
	MediaTypeID string              `json:"mediatypeid"`
	Name        string              `json:"name"`
	Status      string              `json:"status"`
	Parameters  []map[string]string `json:"parameters"`
}

type userMedia struct {
	MediaTypeID string `json:"mediatypeid"`
	SendTo      string `json:"sendto"`
	Active      string `json:"active"`   // 0: enabled
	Severity    string `json:"severity"` // 63: all severities
	Period      string `json:"period"`   // e.g. 1-7,00:00-24:00
}

type apiUser struct {
	UserID string      `json:"userid"`
	Alias  string      `json:"alias"`
	Medias []userMedia `json:"medias"`
}

type opMessage struct {
	DefaultMsg  int    `json:"default_msg"`
	MediaTypeID string `json:"mediatypeid"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

type opUser struct {
	UserID string `json:"userid"`
}

type operation struct {
	OperationType int       `json:"operationtype"`
	OpMessage     opMessage `json:"opmessage"`
	OpMessageUsr  []opUser  `json:"opmessage_usr"`
}

const (
	alertSubject = "{HOST.NAME} | Problem: {EVENT.NAME}"
	alertMessage = "Problem started at {EVENT.TIME} on {EVENT.DATE}\n" +
		"Problem name: {EVENT.NAME}\n" +
		"Host: {HOST.NAME}\n" +
		"Severity: {TRIGGER.SEVERITY}\n" +
		"Original problem ID: #{EVENT.ID}\n" +
		"{TRIGGER.URL}"
)

// Setup configures Zabbix to deliver alerts to Telegram directly: it points
// the "Telegram" media type at the bot token, attaches Telegram media with
// the configured chat ID to the target user and creates the trigger action
// that sends the alerts. Every step is idempotent, so it is safe to run
// against an already configured instance.
func Setup(ctx context.Context, config SetupConfig) error {
	c := NewClient(config.APIURL)
	if err := c.Login(ctx, config.User, config.Password); err != nil {
		return fmt.Errorf("error logging in to zabbix api: %w", err)
	}
	log.Printf("logged in to zabbix api as %s", config.User)
	mediaTypeID, err := c.updateMediaType(ctx, config.BotToken)
	if err != nil {
		return err
	}
	userID, err := c.attachUserMedia(ctx, config.UserAlias, mediaTypeID, config.ChatID)
	if err != nil {
		return err
	}
	if err := c.createAction(ctx, config.ActionName, mediaTypeID, userID); err != nil {
		return err
	}
	log.Println("zabbix setup completed")
	return nil
}

// updateMediaType finds the "Telegram" media type and updates its bot token
// parameter if a token is configured and differs from the stored one.
func (c *Client) updateMediaType(ctx context.Context, botToken string) (string, error) {
	params := struct {
		Output []string          `json:"output"`
		Filter map[string]string `json:"filter"`
	}{
		Output: []string{"mediatypeid", "name", "parameters", "status"},
		Filter: map[string]string{"name": "Telegram"},
	}
	var mediaTypes []mediaType
	if err := c.rpc(ctx, "mediatype.get", params, &mediaTypes); err != nil {
		return "", err
	}
	if len(mediaTypes) == 0 {
		return "", fmt.Errorf("media type \"Telegram\" not found in zabbix")
	}
	mt := mediaTypes[0]
	log.Printf("found media type \"Telegram\" (%s)", mt.MediaTypeID)
	if botToken == "" {
		log.Println("no bot token configured, skipping media type token update")
		return mt.MediaTypeID, nil
	}
	if mt.Parameters == nil {
		log.Println("media type has no parameters, cannot set the token automatically")
		return mt.MediaTypeID, nil
	}
	needsUpdate := false
	for _, p := range mt.Parameters {
		name := strings.ToLower(p["name"])
		if (name == "token" || name == "bottoken") && p["value"] != botToken {
			p["value"] = botToken
			needsUpdate = true
		}
	}
	if !needsUpdate {
		log.Println("media type token parameter not changed or not present, skipping update")
		return mt.MediaTypeID, nil
	}
	update := struct {
		MediaTypeID string              `json:"mediatypeid"`
		Parameters  []map[string]string `json:"parameters"`
	}{
		MediaTypeID: mt.MediaTypeID,
		Parameters:  mt.Parameters,
	}
	if err := c.rpc(ctx, "mediatype.update", update, nil); err != nil {
		return "", err
	}
	log.Println("updated media type bot token")
	return mt.MediaTypeID, nil
}

// attachUserMedia attaches Telegram media with the given chat ID to the
// user with the given alias, unless it is already attached.
func (c *Client) attachUserMedia(ctx context.Context, alias, mediaTypeID, chatID string) (string, error) {
	params := struct {
		Output       []string          `json:"output"`
		Filter       map[string]string `json:"filter"`
		SelectMedias string            `json:"selectMedias"`
	}{
		Output:       []string{"userid", "alias", "name"},
		Filter:       map[string]string{"alias": alias},
		SelectMedias: "extend",
	}
	var users []apiUser
	if err := c.rpc(ctx, "user.get", params, &users); err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", fmt.Errorf("user with alias %q not found in zabbix", alias)
	}
	user := users[0]
	for _, media := range user.Medias {
		if media.MediaTypeID == mediaTypeID && media.SendTo == chatID {
			log.Printf("telegram media already attached to user %s with chat %s", user.UserID, chatID)
			return user.UserID, nil
		}
	}
	update := struct {
		UserID string      `json:"userid"`
		Medias []userMedia `json:"medias"`
	}{
		UserID: user.UserID,
		Medias: append(user.Medias, userMedia{
			MediaTypeID: mediaTypeID,
			SendTo:      chatID,
			Active:      "0",
			Severity:    "63",
			Period:      "1-7,00:00-24:00",
		}),
	}
	if err := c.rpc(ctx, "user.update", update, nil); err != nil {
		return "", err
	}
	log.Printf("attached telegram media to user %s with chat %s", user.UserID, chatID)
	return user.UserID, nil
}

// createAction creates the trigger action that sends alerts through the
// Telegram media type, unless an action with the given name already exists.
func (c *Client) createAction(ctx context.Context, name, mediaTypeID, userID string) error {
	params := struct {
		Output []string          `json:"output"`
		Filter map[string]string `json:"filter"`
	}{
		Output: []string{"actionid", "name"},
		Filter: map[string]string{"name": name},
	}
	var actions []struct {
		ActionID string `json:"actionid"`
		Name     string `json:"name"`
	}
	if err := c.rpc(ctx, "action.get", params, &actions); err != nil {
		return err
	}
	if len(actions) > 0 {
		log.Printf("action %q already exists (%s)", name, actions[0].ActionID)
		return nil
	}
	create := struct {
		Name        string      `json:"name"`
		EventSource int         `json:"eventsource"` // 0: triggers
		Status      int         `json:"status"`      // 0: enabled
		Operations  []operation `json:"operations"`
	}{
		Name:        name,
		EventSource: 0,
		Status:      0,
		Operations: []operation{{
			OperationType: 0,
			OpMessage: opMessage{
				DefaultMsg:  0,
				MediaTypeID: mediaTypeID,
				Subject:     alertSubject,
				Message:     alertMessage,
			},
			OpMessageUsr: []opUser{{UserID: userID}},
		}},
	}
	if err := c.rpc(ctx, "action.create", create, nil); err != nil {
		return err
	}
	log.Printf("created action %q", name)
	return nil
}
