package controllers

import (
	"closetlyapi/models"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type StylePreferenceIn struct {
	Style string `json:"style" validate:"required"`
	Score *int   `json:"score" validate:"required"`
}

type StylePreferencesIn struct {
	Preferences []StylePreferenceIn `json:"preferences" validate:"required,dive"`
}

type FavoriteColorsIn struct {
	Colors []string `json:"colors"`
}

type ProfileController struct {
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {

	g.GET("/members", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var closetDb models.Company
		r := db.Preload("Members.UserAccount").Limit(1).Find(&closetDb, "id = ?", user.Memberships[0].CompanyID)
		if r.RowsAffected == 0 {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Something happened",
			})
		}
		var members []models.MemberInfoOut
		for _, member := range closetDb.Members {
			memberUser := member.UserAccount
			fmt.Println("Member: ", memberUser.Name, memberUser.Status)
			members = append(members, models.MemberInfoOut{
				Active: member.Active,
				Role:   member.Role,
				UserInfo: models.UserInfoOut{
					Id:                memberUser.ID,
					Name:              memberUser.Name,
					CompanyName:       closetDb.Name,
					Email:             memberUser.Email,
					Status:            memberUser.Status,
					AvatarUrl:         memberUser.AvatarURL,
					FullBodyAvatarSet: memberUser.FullBodyAvatarSet,
				},
				InviteCode: member.InviteCode,
			})
		}
		return c.JSON(http.StatusOK, members)
	})

	// full replace of the style quiz answers, one row per style
	g.POST("/style-preferences", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var request = new(StylePreferencesIn)
		if err := c.Bind(request); err != nil {
			return err
		}
		if err := c.Validate(request); err != nil {
			return err
		}
		for _, pref := range request.Preferences {
			if !models.ValidateStyleRaw(pref.Style) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": fmt.Sprintf("Unknown style %q", pref.Style)})
			}
			if *pref.Score < 0 || *pref.Score > 10 {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Style score must be between 0 and 10"})
			}
		}
		var saved []models.StylePreference
		for _, pref := range request.Preferences {
			row := models.StylePreference{
				UserAccountID: user.ID,
				Style:         models.ScanStyle(pref.Style),
			}
			result := db.Where("user_account_id = ? and style = ?", user.ID, pref.Style).FirstOrCreate(&row)
			if result.Error != nil {
				fmt.Println("Error saving style preference ", result.Error)
				return echo.ErrInternalServerError
			}
			row.Score = *pref.Score
			if err := db.Save(&row).Error; err != nil {
				fmt.Println("Error saving style preference ", err)
				return echo.ErrInternalServerError
			}
			saved = append(saved, row)
		}
		fmt.Printf("[User %v] saved %v style preferences\n", user.ID, len(saved))
		return c.JSON(http.StatusOK, echo.Map{
			"preferences": saved,
		})
	})

	g.GET("/style-preferences", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var prefs []models.StylePreference
		db.Where("user_account_id = ?", user.ID).Order("style asc").Find(&prefs)
		return c.JSON(http.StatusOK, echo.Map{
			"preferences": prefs,
		})
	})

	// colors are stored lowercased, the engine matches them case-insensitively anyway
	g.POST("/favorite-colors", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var request = new(FavoriteColorsIn)
		if err := c.Bind(request); err != nil {
			return err
		}
		var colors pq.StringArray
		for _, color := range request.Colors {
			color = strings.ToLower(strings.TrimSpace(color))
			if color == "" {
				continue
			}
			colors = append(colors, color)
		}
		user.FavoriteColors = colors
		if err := db.Model(&user).Update("favorite_colors", colors).Error; err != nil {
			fmt.Println("Error saving favorite colors ", err)
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, echo.Map{
			"favorite_colors": user.FavoriteColors,
		})
	})
}
