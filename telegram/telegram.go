package telegram

import (
	"fmt"
	"log"
	"os"
	"strings"

	"closetlyapi/languageutil"
	"closetlyapi/models"
	"closetlyapi/outfits"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
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

// RunOutfitBot serves outfit-of-the-day requests over Telegram. Users link
// their account by saving their Telegram username in the app, then /ootd
// answers with a fresh pick from their closet.
func RunOutfitBot(e *echo.Echo, db *gorm.DB) {

	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		println("Error tg bot init")
		log.Panic(err)
	}
	bot.Debug = true

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		switch update.Message.Command() {
		case "start":
			msg := tgbotapi.NewMessage(update.Message.Chat.ID,
				"Add your Telegram username in the Closetly app settings, then send /ootd to get your outfit of the day.")
			bot.Send(msg)
		case "ootd":
			reply := outfitOfTheDay(db, update.Message.From.UserName)
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			msg.ParseMode = "markdown"
			msg.ReplyToMessageID = update.Message.MessageID
			bot.Send(msg)
		}
	}

}

func outfitOfTheDay(db *gorm.DB, username string) string {
	if username == "" {
		return "Your Telegram account has no username, set one first."
	}
	var user models.UserAccount
	res := db.Preload("Memberships").Preload("StylePreferences").
		Where("telegram_username = ? AND banned = ?", username, false).First(&user)
	if res.Error != nil || len(user.Memberships) == 0 {
		return fmt.Sprintf("No closet linked to @%s yet. Add your Telegram username in the Closetly app settings.", EscapeMessage(username))
	}

	var wardrobe []models.Clothing
	if err := db.Where("company_id = ? AND status = ?", user.Memberships[0].CompanyID, "in_closet").Find(&wardrobe).Error; err != nil {
		log.Printf("[Bot] Error loading wardrobe for @%s: %v", username, err)
		return "Something went wrong, please try again."
	}
	if !outfits.IsWardrobeReady(wardrobe) {
		return "Your closet needs a few more pieces first. Aim for 5 tops, 3 bottoms and 2 pairs of shoes."
	}

	prefs := map[models.Style]int{}
	for _, pref := range user.StylePreferences {
		prefs[pref.Style] = pref.Score
	}
	generated := outfits.Generate(wardrobe, outfits.Profile{
		StylePreferences: prefs,
		FavoriteColors:   user.FavoriteColors,
	}, outfits.Options{Count: 1})
	if len(generated) == 0 {
		return "Could not put together an outfit today, try adding more variety to your closet."
	}
	outfit := generated[0]

	reply := strings.Builder{}
	reply.WriteString("Your outfit of the day 👔\n")
	reply.WriteString(fmt.Sprintf("Top: *%s*\n", EscapeMessage(languageutil.DisplayName(outfit.Top.Name))))
	reply.WriteString(fmt.Sprintf("Bottom: *%s*\n", EscapeMessage(languageutil.DisplayName(outfit.Bottom.Name))))
	reply.WriteString(fmt.Sprintf("Shoes: *%s*\n", EscapeMessage(languageutil.DisplayName(outfit.Shoes.Name))))
	if outfit.Outerwear != nil {
		reply.WriteString(fmt.Sprintf("Layer: *%s*\n", EscapeMessage(languageutil.DisplayName(outfit.Outerwear.Name))))
	}
	if outfit.Accessory != nil {
		reply.WriteString(fmt.Sprintf("Accessory: *%s*\n", EscapeMessage(languageutil.DisplayName(outfit.Accessory.Name))))
	}
	return reply.String()
}
