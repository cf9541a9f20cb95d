package telegram

import (
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// SendAdminMessage pushes a one-shot status message to the admin chat.
// Worker jobs use it for catalog refresh summaries, failures are logged and
// swallowed.
func SendAdminMessage(message string) {
	token := os.Getenv("TG_TOKEN")
	chatIdRaw := os.Getenv("TG_ADMIN_CHAT_ID")
	if token == "" || chatIdRaw == "" {
		log.Println("Telegram alerts disabled, TG_TOKEN or TG_ADMIN_CHAT_ID not set")
		return
	}
	chatId, err := strconv.ParseInt(chatIdRaw, 10, 64)
	if err != nil {
		log.Println("Invalid TG_ADMIN_CHAT_ID:", chatIdRaw)
		return
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Println("Error tg bot init", err)
		return
	}

	msg := tgbotapi.NewMessage(chatId, EscapeMessage(message))
	msg.ParseMode = "markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Println("Error sending telegram admin message", err)
	}
}
