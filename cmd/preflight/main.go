// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	chat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	discord := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	db := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))

	if token == "" {
		fail("TELEGRAM_BOT_TOKEN is empty (alerts cannot be delivered).")
	}
	if chat == "" {
		fail("TELEGRAM_CHAT_ID is empty (alerts cannot be delivered).")
	}
	if _, err := strconv.ParseInt(chat, 10, 64); err != nil {
		fail("TELEGRAM_CHAT_ID is not a numeric chat id: " + chat)
	}
	ok("Telegram configured")

	if discord == "" {
		warn("DISCORD_WEBHOOK_URL empty — alerts go to Telegram only.")
	} else if !strings.HasPrefix(discord, "https://") {
		warn("DISCORD_WEBHOOK_URL does not look like an https webhook URL.")
	} else {
		ok("Discord webhook present")
	}

	if db == "" {
		warn("DATABASE_PATH empty — catalog and cooldowns are lost on restart.")
	} else {
		ok("DATABASE_PATH=" + db)
	}

	if admin == "" {
		warn("ADMIN_API_KEYS empty — admin routes are open to anyone.")
	} else if strings.Contains(admin, " ") {
		warn("ADMIN_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
	} else {
		ok("admin keys present")
	}

	if addr == "" {
		warn("ADDR is empty; the dashboard defaults to 127.0.0.1:8080.")
	} else {
		ok("ADDR=" + addr)
	}

	ok("preflight passed")
}
