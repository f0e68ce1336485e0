package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"closetlyapi/models"
	"closetlyapi/services"

	firebase "firebase.google.com/go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type WebhooksController struct {
	Google      services.GoogleServiceProvider
	FirebaseApp *firebase.App
}

// notifySales pushes a billing event line to the internal telegram channel.
// Never fails the webhook, billing state is already persisted at this point.
func notifySales(bot *tgbotapi.BotAPI, text string) {
	if bot == nil {
		return
	}
	chatId, err := strconv.ParseInt(os.Getenv("TG_SALES_CHAT_ID"), 10, 64)
	if err != nil {
		fmt.Println("TG_SALES_CHAT_ID is not set, skipping telegram notify")
		return
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatId, text)); err != nil {
		fmt.Println(err)
	}
}

// ownedClosetNames downgrades/upgrades every closet owned by the user and
// returns their names joined for logging.
func updateOwnedClosets(db *gorm.DB, userId uint64, plan *models.Subscription) (string, error) {
	var companies []models.Company
	result := db.Where("owner_id = ?", userId).Find(&companies)
	if result.Error != nil {
		fmt.Println("Error getting user closets", result.Error)
		return "", result.Error
	}
	var names []string
	for _, company := range companies {
		names = append(names, company.Name)
		if plan != nil {
			company.Subscription = *plan
			db.Save(&company)
			fmt.Println("Subscription", string(*plan), "set for", company.Name)
		}
	}
	return strings.Join(names, ","), nil
}

func (wc *WebhooksController) SetupRoutes(g *echo.Group) {

	g.POST("/rc-subscription-webhooks", func(c echo.Context) error {
		fmt.Println("Received webhook for subscription event auth: ", c.Request().Header.Get("Authorization"))
		if c.Request().Header.Get("Authorization") != "Bearer "+os.Getenv("RC_WEBHOOK_TOKEN") {
			fmt.Println("Invalid Authorization header for webhook!")
			fmt.Println("[Malicious] IP: ", c.RealIP(), "User agent: ", c.Request().Header.Get("User-Agent"), "Authorization: ", c.Request().Header.Get("Authorization"))
			return echo.ErrUnauthorized
		}

		db, ok := c.Get("__db").(*gorm.DB)
		if !ok {
			fmt.Println("error getting DB for subscription!")
			return echo.ErrInternalServerError
		}

		b, err := io.ReadAll(c.Request().Body)
		if err != nil {
			fmt.Println(err)
			return echo.ErrInternalServerError
		}
		var eventData map[string]interface{}
		fmt.Println("Event: ", string(b))
		err = json.NewDecoder(bytes.NewReader(b)).Decode(&eventData)
		if err != nil {
			fmt.Println("error parsing event json!")
			return echo.ErrInternalServerError
		}

		event, ok := eventData["event"].(map[string]interface{})
		if !ok {
			fmt.Println("Cannot parse event!")
			return echo.ErrInternalServerError
		}
		appUserId, ok := event["app_user_id"].(string)

		eventType, _ := event["type"].(string)
		if eventType == "TRANSFER" {
			fmt.Println("Transfer skip..")
			return c.JSON(http.StatusOK, echo.Map{
				"message": "OK TRANSFER",
			})
		}
		bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
		if err != nil {
			fmt.Println("Error initializing telegram BOT!")
		}

		if strings.Contains(appUserId, "$RCAnonymousID") {
			appUserId = event["original_app_user_id"].(string)
			if strings.Contains(appUserId, "$RCAnonymousID") {
				fmt.Println("Anonymous ID couldnt verify the user!", appUserId)
				notifySales(bot, fmt.Sprintf("Unknown user %s event: %s ", appUserId, eventType))
				return c.JSON(http.StatusOK, echo.Map{
					"message": "Error unknown user",
				})
			}
		}
		if !ok {
			fmt.Println("Cannot parse app user id!")
			return echo.ErrInternalServerError
		}

		// RC entitlement state can lag right behind the event
		time.Sleep(time.Second * 4)
		b, err = wc.Google.GetUserSubscriptionStatus(context.Background(), appUserId)
		if err != nil {
			fmt.Println(err)
			return echo.ErrInternalServerError
		}
		fmt.Println("Status sub: ", string(b))

		var subData map[string]interface{}
		err = json.NewDecoder(bytes.NewReader(b)).Decode(&subData)
		if err != nil {
			fmt.Println("Error decoding user subscription status", err)
			return echo.ErrInternalServerError
		}

		subscriber, ok := subData["subscriber"].(map[string]interface{})
		if !ok {
			fmt.Println("Error reading sub status of user ", appUserId)
			return echo.ErrInternalServerError
		}
		entitlements, ok := subscriber["entitlements"].(map[string]interface{})
		if !ok {
			fmt.Println("Error reading sub status of user ", appUserId)
			return echo.ErrInternalServerError
		}

		pro_entitlement, pro_ok := entitlements["pro"].(map[string]interface{})
		time_layout := "2006-01-02T15:04:05Z"

		var user models.UserAccount
		userId, err := strconv.ParseUint(appUserId, 10, 32)
		if err != nil {
			fmt.Println("Cannot get user id parse to update sub!", appUserId)
			return echo.ErrInternalServerError
		}
		result := db.First(&user, userId)
		if result.Error != nil {
			fmt.Println("Cannot get user to update sub!", appUserId)
			return echo.ErrInternalServerError
		}

		if eventType == "EXPIRATION" {
			reason := event["expiration_reason"]
			var planString = string(models.Free)
			user.Subscription = &planString
			db.Save(&user)
			free := models.Free
			closetNames, err := updateOwnedClosets(db, userId, &free)
			if err != nil {
				return echo.ErrInternalServerError
			}
			notifySales(bot, fmt.Sprintf("🛑 %s(%s) %s reason %s", user.Name, closetNames, eventType, reason))
			services.SendNotification(wc.FirebaseApp, db, user.ID, "Subscription expired", "Oh, no! You will not be able to add clothes or generate outfits. Subscribe again to keep styling with Closetly! 🔥", nil)

			return c.JSON(http.StatusOK, echo.Map{
				"message": "expire ok",
			})
		}

		if eventType == "CANCELLATION" {
			reason := event["cancel_reason"]
			var planString = string(models.Free)
			user.Subscription = &planString
			db.Save(&user)
			closetNames, err := updateOwnedClosets(db, userId, nil)
			if err != nil {
				return echo.ErrInternalServerError
			}
			notifySales(bot, fmt.Sprintf("🛑 %s(%s)  %s reason %s", user.Name, closetNames, eventType, reason))

			if reason == "UNSUBSCRIBE" {
				services.SendNotification(wc.FirebaseApp, db, user.ID, "Subscription cancelled", "Ready to take a survey for a discount just for one feedback? 🔥 sales@closetly.app. ", nil)
			} else if reason == "BILLING_ERROR" {
				services.SendNotification(wc.FirebaseApp, db, user.ID, "Payment error", "Please update your payment to keep your subscription active! 😮 ", nil)
			}

			return c.JSON(http.StatusOK, echo.Map{
				"message": "cancel ok",
			})
		}

		if pro_ok {
			expires, ok := pro_entitlement["expires_date"].(string)
			if !ok {
				fmt.Println("Error parsing Pro expiration date")
				return echo.ErrInternalServerError
			}
			t, err := time.Parse(time_layout, expires)
			if err != nil {
				fmt.Println(err)
			}
			fmt.Println(t, time.Now(), appUserId)
			var planString = string(models.Pro)
			user.Subscription = &planString
			user.ExpirationDate = &t
			db.Save(&user)
			if t.After(time.Now()) {
				pro := models.Pro
				closetNames, err := updateOwnedClosets(db, userId, &pro)
				if err != nil {
					return echo.ErrInternalServerError
				}
				if eventType == "INITIAL_PURCHASE" {
					notifySales(bot, fmt.Sprintf("🎉⚡️🔥 %s(%s) subscription update: %s ", user.Name, closetNames, string(models.Pro)))
				}
				periodType, ok := event["period_type"].(string)
				if ok && periodType == "PROMOTIONAL" {
					services.SendNotification(wc.FirebaseApp, db, user.ID, "Promo activated 🎉", fmt.Sprintf("Your %s subscription is now active until %s", "Pro", t.Format("2006-01-02")), nil)
				}
				return c.JSON(http.StatusOK, echo.Map{
					"message": "Pro is active",
				})
			}
		}

		fmt.Println("No active sub/entitlements found for user, updating backend sub ", appUserId)
		var planString = string(models.Free)
		user.Subscription = &planString
		db.Save(&user)
		free := models.Free
		closetNames, err := updateOwnedClosets(db, userId, &free)
		if err != nil {
			return echo.ErrInternalServerError
		}
		notifySales(bot, fmt.Sprintf("⚠️ %s(%s) subscription updated : %s %s", user.Name, closetNames, string(models.Free), eventType))
		return c.JSON(http.StatusOK, echo.Map{
			"message": "OK ",
		})
	})
}
