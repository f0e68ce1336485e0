package controllers

import (
	"closetlyapi/models"
	"closetlyapi/services"
	"closetlyapi/tasks"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	apple "github.com/Timothylock/go-signin-with-apple/apple"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const defaultAvatarURL = "https://pub-closetly.r2.dev/user-circle.png"

type SetAvatarUploadFileRequest struct {
	FileName *string `json:"file_name" validate:"required,max=1000"`
}

type AuthController struct {
	Google      services.GoogleServiceProvider
	FirebaseApp *firebase.App
	AWSService  services.AWSServiceProvider
}

// finishOnboarding creates the user's own closet and the OWNER membership.
// Called from both the google and apple finish flows.
func finishOnboarding(db *gorm.DB, user *models.UserAccount, closetName string, utmSource string) (*models.Company, *models.UserCompanyRole) {
	user.Status = "FINISHED_AUTH"
	user.UTMSource = utmSource
	closet := &models.Company{
		Name:         closetName,
		OwnerID:      user.ID,
		Subscription: models.Free,
		TrialDays:    UIntPointer(14),
		Currency:     "$",
		Language:     "en",
		Active:       true,
	}
	db.Create(&closet)
	membership := &models.UserCompanyRole{
		CompanyID:     closet.ID,
		UserAccountID: user.ID,
		Active:        true,
		Role:          "OWNER",
	}
	db.Save(&user)
	db.Save(&membership)
	return closet, membership
}

func onboardingResponse(c echo.Context, user *models.UserAccount, closet *models.Company, membership *models.UserCompanyRole) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"company_id":   closet.ID,
		"company_name": closet.Name,
		"company": models.CompanyInfoOut{
			Id:               closet.ID,
			Name:             closet.Name,
			OwnerId:          closet.OwnerID,
			Active:           closet.Active,
			Subscription:     closet.Subscription,
			TrialStartedDate: closet.TrialStartedDate,
			TrialDays:        closet.TrialDays,
			FullAdminAccess:  closet.FullAdminAccess,
		},
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         string(membership.Role),
		"new":          true,
		"avatar":       user.AvatarURL,
		"access_token": GenerateUserToken(fmt.Sprint(user.ID), c, 72),
	})
}

func verifiedUserResponse(c echo.Context, user *models.UserAccount, email interface{}) error {
	memberships := user.Memberships
	var role string
	var company models.Company
	if len(memberships) > 0 {
		company = user.Memberships[0].Company
		role = string(user.Memberships[0].Role)
	}
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	if err != nil {
		fmt.Println(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"company": models.CompanyInfoOut{
			Id:               company.ID,
			Name:             company.Name,
			OwnerId:          company.OwnerID,
			Active:           company.Active,
			Subscription:     company.Subscription,
			TrialStartedDate: company.TrialStartedDate,
			TrialDays:        company.TrialDays,
			FullAdminAccess:  company.FullAdminAccess,
		},
		"company_id":   company.ID,
		"company_name": company.Name,
		"id":           user.ID,
		"name":         user.Name,
		"role":         role,
		"was_invited":  user.Status == "INVITATION_PENDING",
		"email":        email, "new": user.Status == "STARTED_AUTH" || user.Status == "INVITATION_PENDING", "avatar": user.AvatarURL,
		"access_token":  GenerateUserToken(fmt.Sprint(user.ID), c, 72),
		"refresh_token": refreshToken,
	})
}

func newAuthResponse(c echo.Context, user *models.UserAccount, email interface{}, isNew bool) error {
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	if err != nil {
		fmt.Println(err)
		return echo.ErrInternalServerError
	}
	var role string
	if len(user.Memberships) > 0 {
		role = string(user.Memberships[0].Role)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"email": email,
		"new":   isNew || user.Status == "STARTED_AUTH" || user.Status == "INVITATION_PENDING", "avatar": user.AvatarURL,
		"role":          role,
		"was_invited":   user.Status == "INVITATION_PENDING",
		"name":          user.Name,
		"access_token":  GenerateUserToken(fmt.Sprint(user.ID), c, 72),
		"refresh_token": refreshToken,
	})
}

func (m *AuthController) ProfileRoutes(g *echo.Group) {
	g.POST("/google/v2", func(c echo.Context) (err error) {
		googleCreds := new(models.GoogleAuthSignIn)
		signUp := new(models.SignUpIn)
		if c.QueryParam("verify") == "true" {
			if err := c.Bind(googleCreds); err != nil {
				return err
			}
			if !models.ValidatePlatformRaw(googleCreds.Platform) {
				return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
			}
			if err = c.Validate(googleCreds); err != nil {
				return err
			}
		} else {
			if err := c.Bind(signUp); err != nil {
				return err
			}
			if !models.ValidatePlatformRaw(signUp.Platform) {
				return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
			}
			if err = c.Validate(signUp); err != nil {
				return err
			}
		}
		idToken := IfThenElse(googleCreds.IdToken == "", signUp.IdToken, googleCreds.IdToken).(string)
		platform := IfThenElse(googleCreds.Platform == "", signUp.Platform, googleCreds.Platform).(string)
		payload, err := m.Google.ValidateIdToken(context.Background(), idToken, os.Getenv("GOOGLE_CLIENT_ID"))
		if err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		sub, ok := payload.Claims["sub"]
		if !ok {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		var googleId string = sub.(string)

		googleEmail, ok := payload.Claims["email"]
		if !ok {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data email %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}

		pictureUrl, _ := payload.Claims["picture"].(string)
		googleName, _ := payload.Claims["name"].(string)

		db := c.Get("__db").(*gorm.DB)
		var user *models.UserAccount
		r := db.Preload("Memberships.Company").Where("google_id = ?", googleId).Limit(1).Find(&user)
		if r.Error != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal server error"})
		}
		if c.QueryParam("verify") == "true" {
			if r.RowsAffected > 0 {
				if user.Banned {
					return echo.ErrForbidden
				}
				return verifiedUserResponse(c, user, googleEmail)
			}
			// fresh google id, maybe we know the email already
			emailHit := db.Where("email = ?", googleEmail).Limit(1).Find(&user)
			if emailHit.RowsAffected > 0 {
				user.AvatarURL = pictureUrl
				user.GoogleID = googleId
				user.Name = googleName
				user.LastIp = c.RealIP()
				user.Platform = models.ScanPlatform(platform)
				db.Save(&user)
				return newAuthResponse(c, user, googleEmail, false)
			}
			user = &models.UserAccount{
				Name:      googleName,
				Email:     googleEmail.(string),
				GoogleID:  googleId,
				Platform:  models.ScanPlatform(platform),
				LastIp:    c.RealIP(),
				Status:    "STARTED_AUTH",
				AvatarURL: pictureUrl,
			}
			db.Create(&user)
			return newAuthResponse(c, user, googleEmail, true)
		}
		if r.RowsAffected > 0 {
			user.Name = signUp.Name
			closet, membership := finishOnboarding(db, user, signUp.Closet, signUp.UTMSource)
			fmt.Println("User onboarding finished google: ", googleEmail, googleId)
			return onboardingResponse(c, user, closet, membership)
		}
		c.Logger().Warnf("Error when finishing user creation, no user found in database %s %s", googleEmail, googleId)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Sorry, something wrong happened, please try again!"})
	})

	g.POST("/apple", func(c echo.Context) error {
		var req models.AppleAuthRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}

		signUp := new(models.SignUpIn)
		teamID := services.GetEnv("APPLE_TEAM_ID", "")
		keyID := services.GetEnv("APPLE_SIGNIN_KEY_ID", "")
		// the "Services ID" of the sign-in-with-Apple enabled app
		clientID := services.GetEnv("APPLE_BUNDLE_ID", "com.closetly.app")

		secret, err := services.DecodeBase64EnvPrivateKey("APPLE_SIGNIN_PKEY_BASE64")
		if err != nil {
			log.Println("Error getting Apple private key:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		secret, err = apple.GenerateClientSecret(secret, teamID, clientID, keyID)
		if err != nil {
			log.Println("Error generating Apple client secret:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		client := apple.New()

		vReq := apple.AppValidationTokenRequest{
			ClientID:     clientID,
			ClientSecret: secret,
			Code:         req.AuthorizationCode,
		}
		var resp apple.ValidationResponse
		err = client.VerifyAppToken(context.Background(), vReq, &resp)
		if err != nil {
			fmt.Println("error verifying: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		if resp.Error != "" {
			fmt.Printf("apple returned an error: %s - %s\n", resp.Error, resp.ErrorDescription)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials through Apple"})
		}

		unique, err := apple.GetUniqueID(resp.IDToken)
		if err != nil {
			fmt.Println("failed to get unique ID: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't get your unique identifier"})
		}
		claim, err := apple.GetClaims(resp.IDToken)
		if err != nil {
			fmt.Println("failed to get claims: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't get your information"})
		}

		appleEmail, ok := (*claim)["email"].(string)
		emailVerified, verifiedOk := (*claim)["email_verified"].(bool)
		isPrivateEmail, isPrivateEmailOk := (*claim)["is_private_email"].(bool)
		fmt.Println("[Apple signin] email:", appleEmail, " verified:", emailVerified, " private:", isPrivateEmail)
		if !ok {
			fmt.Println(fmt.Sprintf("[Apple signin] no email in token  %s", claim))
		}
		if !verifiedOk || !isPrivateEmailOk {
			log.Println("[Apple signin] Email not verified or is_private_email missing from claims")
		}
		platform := req.Platform
		var appleId string = unique

		db := c.Get("__db").(*gorm.DB)
		var user *models.UserAccount

		var r *gorm.DB
		if appleEmail == "" {
			r = db.Preload("Memberships.Company").Where("apple_id = ?", appleId).Limit(1).Find(&user)
		} else {
			r = db.Preload("Memberships.Company").Where("apple_id = ? or email = ?", appleId, appleEmail).Limit(1).Find(&user)
		}
		if r.Error != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal server error"})
		}
		if c.QueryParam("verify") == "true" {
			if r.RowsAffected > 0 {
				if user.Banned {
					return echo.ErrForbidden
				}
				user.AppleID = appleId
				db.Save(&user)
				return verifiedUserResponse(c, user, appleEmail)
			}
			if appleEmail == "" {
				fmt.Println("[Apple signin] New user but no email in claims")
				return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "It seems that you are signing in the first time and no email was provided by Apple. Please try again or contact us at support@closetly.app."})
			}
			emailHit := db.Where("email = ?", appleEmail).Limit(1).Find(&user)
			if emailHit.RowsAffected > 0 {
				if user.AvatarURL == "" {
					user.AvatarURL = defaultAvatarURL
				}
				user.AppleID = appleId
				if user.Name == "" {
					user.Name = appleEmail
				}
				user.LastIp = c.RealIP()
				user.Platform = models.ScanPlatform(platform)
				db.Save(&user)
				return newAuthResponse(c, user, appleEmail, false)
			}
			user = &models.UserAccount{
				Name:      appleEmail,
				Email:     appleEmail,
				AppleID:   appleId,
				Platform:  models.ScanPlatform(platform),
				LastIp:    c.RealIP(),
				Status:    "STARTED_AUTH",
				AvatarURL: defaultAvatarURL,
			}
			db.Create(&user)
			return newAuthResponse(c, user, appleEmail, true)
		}
		if r.RowsAffected > 0 {
			closet, membership := finishOnboarding(db, user, signUp.Closet, signUp.UTMSource)
			fmt.Println("User onboarding finished apple: ", appleEmail, appleId)
			return onboardingResponse(c, user, closet, membership)
		}
		c.Logger().Warnf("Error when finishing user creation, no user found in database %s %s", appleEmail, appleId)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Sorry, something wrong happened, please try again!"})
	})

	g.POST("/apple/finish", func(c echo.Context) error {
		var req models.ProfileIn
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		if user.ID < 1 {
			return echo.ErrForbidden
		}
		if user.Status == "FINISHED_AUTH" {
			return echo.ErrBadRequest
		}
		if req.Name != "" {
			user.Name = req.Name
		}
		closet, membership := finishOnboarding(db, &user, req.Closet, req.UTMSource)
		return onboardingResponse(c, &user, closet, membership)
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), NoMembershipUserMiddleware)

	g.POST("/refresh-token", func(c echo.Context) error {
		type tokenReqBody struct {
			RefreshToken string `json:"refresh_token"`
		}
		tokenReq := new(tokenReqBody)

		if err := c.Bind(&tokenReq); err != nil {
			fmt.Println(err)
			return echo.ErrBadRequest
		}
		if tokenReq.RefreshToken == "" {
			fmt.Println("Refresh token is empty")
			return echo.ErrBadRequest
		}
		token, err := jwt.Parse(tokenReq.RefreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil {
			fmt.Println(err)
			return echo.ErrBadRequest
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
			db := c.Get("__db").(*gorm.DB)
			data, errConvert := claims["sub"].(string)
			if !errConvert {
				fmt.Println("Cannot convert sub to string!", err)
				return echo.ErrInternalServerError
			}
			userId, err := strconv.Atoi(data)
			if err != nil {
				fmt.Println("Error parsing sub of the user!!", err)
				return echo.ErrInternalServerError
			}
			if userId < 1 {
				fmt.Println("Refresh: sub is:", userId)
				return echo.ErrBadRequest
			}
			var user *models.UserAccount
			result := db.First(&user, userId)
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				fmt.Println("Requested user not found!", userId)
				if user == nil {
					return echo.ErrForbidden
				}
			}
			if result.Error != nil {
				fmt.Println("Error getting user while refreshing token", userId)
				return echo.ErrInternalServerError
			}
			if !user.Banned {
				t := GenerateUserToken(fmt.Sprint(userId), c, 72)
				rt, err := GenerateRefreshToken(fmt.Sprint(userId))
				if err != nil {
					fmt.Println("Error refreshing token ", err)
					return echo.ErrInternalServerError
				}
				return c.JSON(http.StatusOK, echo.Map{
					"access_token":  t,
					"refresh_token": rt,
				})
			}
			return echo.ErrUnauthorized
		}
		return err
	})

	g.GET("/my/closets", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var invites []models.UserCompanyRole
		db.Where(" user_account_id = ?", user.ID).Joins("Company").Find(&invites)

		var closets = []models.CompanyInfoRoleOut{}
		for _, membership := range invites {
			closets = append(closets, models.CompanyInfoRoleOut{
				Role: string(membership.Role),
				CompanyInfoOut: models.CompanyInfoOut{
					Name:             membership.Company.Name,
					OwnerId:          membership.Company.OwnerID,
					Id:               membership.CompanyID,
					Active:           membership.Active,
					Subscription:     membership.Company.Subscription,
					TrialStartedDate: membership.Company.TrialStartedDate,
					TrialDays:        membership.Company.TrialDays,
				},
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"invites": closets,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var companyDb models.Company
		r := db.Limit(1).Find(&companyDb, "id = ?", user.Memberships[0].CompanyID)
		if r.RowsAffected == 0 {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Something went wrong",
			})
		}

		var closets = []models.CompanyInfoRoleOut{}
		for _, membership := range user.Memberships {
			closets = append(closets, models.CompanyInfoRoleOut{
				Role: string(membership.Role),
				CompanyInfoOut: models.CompanyInfoOut{
					Name:             membership.Company.Name,
					Id:               membership.CompanyID,
					OwnerId:          membership.Company.OwnerID,
					Active:           membership.Active,
					Subscription:     membership.Company.Subscription,
					TrialStartedDate: membership.Company.TrialStartedDate,
					TrialDays:        membership.Company.TrialDays,
				},
			})
		}
		fullbodyAvatarUrl := user.UserFullBodyImageURL
		if user.UserFullBodyImageURL != nil && *user.UserFullBodyImageURL != "" {
			bucketName := services.GetEnv("R2_BUCKET_NAME", "")
			avatarR2URL, err := m.AWSService.GetPresignedR2FileReadURL(context.Background(), bucketName, *user.UserFullBodyImageURL)
			if err != nil {
				// presign failed, fall back to the raw key instead of failing the request
				log.Printf("CRITICAL:  R2 avatar could not fetch for key '%s': %v", *user.UserFullBodyImageURL, err)
				sentry.CaptureException(err)
			} else {
				fullbodyAvatarUrl = &avatarR2URL
			}
		}
		return c.JSON(http.StatusOK, models.UserMeInfoOut{
			Name:                                 user.Name,
			MyClosets:                            closets,
			Email:                                user.Email,
			Status:                               user.Status,
			AvatarURL:                            user.AvatarURL,
			FullBodyAvatarUrl:                    fullbodyAvatarUrl,
			FullBodyAvatarSet:                    user.FullBodyAvatarSet,
			FullBodyAvatarStatus:                 user.FullBodyAvatarStatus,
			FullBodyAvatarProcessingErrorMessage: user.FullBodyAvatarProcessingErrorMessage,
			ReceiveNotifications:                 user.ReceiveNotifications,
			DailyOutfitAlertsEnabled:             user.DailyOutfitAlertsEnabled,
			FavoriteColors:                       user.FavoriteColors,
			StylePreferences:                     user.StylePreferences,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/settings", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		var settingsIn = new(models.UserSettingsIn)
		db := c.Get("__db").(*gorm.DB)
		if err := c.Bind(settingsIn); err != nil {
			return err
		}
		if settingsIn.ReceiveNotifications != nil {
			user.ReceiveNotifications = *settingsIn.ReceiveNotifications
		}
		if settingsIn.DailyOutfitAlertsEnabled != nil {
			user.DailyOutfitAlertsEnabled = *settingsIn.DailyOutfitAlertsEnabled
		}
		db.Save(&user)
		return c.JSON(http.StatusOK, echo.Map{
			"receive_notifications":       user.ReceiveNotifications,
			"daily_outfit_alerts_enabled": user.DailyOutfitAlertsEnabled,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.GET("/latest-banner", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"key":        "daily_outfits_intro",
			"has_action": true,
			"en": echo.Map{
				"text":        "Get a fresh outfit suggestion every morning",
				"actionTitle": "Turn on daily outfits",
			},
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/register-push", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)

		if err := c.Bind(tokenRequest); err != nil {
			return err
		}
		if !models.ValidatePlatformRaw(string(tokenRequest.Platform)) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}
		var pushData models.UserPushToken = models.UserPushToken{
			Platform:      models.ScanPlatform(tokenRequest.Platform),
			Token:         tokenRequest.Token,
			UserAccountID: user.ID,
			Active:        true,
		}

		// same token/device can sign in to diff accs and still receive pushes.
		// we try to delete other session but we cannot rely on that
		result := db.Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).FirstOrCreate(&pushData)
		if result.Error != nil {
			log.Println(result.Error)
			return echo.ErrInternalServerError
		}
		if result.RowsAffected >= 1 {
			fmt.Println("Token created for user ", user.ID, "Platform: ", tokenRequest.Platform)
		}
		fmt.Println("Push id ", pushData.ID, " Token ", pushData.Token, " Platform: ", pushData.Platform, "User ID:", pushData.UserAccountID)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "registered",
			"push_id": pushData.ID,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/delete-push", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)

		if err := c.Bind(tokenRequest); err != nil {
			return err
		}
		if !models.ValidatePlatformRaw(string(tokenRequest.Platform)) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}

		result := db.Where("token = ? and user_account_id = ? and platform = ?", tokenRequest.Token, user.ID, tokenRequest.Platform).Delete(&models.UserPushToken{})
		if result.Error != nil {
			log.Println(result.Error)
			return echo.ErrInternalServerError
		}
		if result.RowsAffected >= 1 {
			fmt.Println("Token deleted for user ", user.ID, "Platform: ", tokenRequest.Platform)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "deleted",
			"deleted": result.RowsAffected > 0,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/logout", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return err
		}

		db.Where("user_account_id = ? and token = ?", user.ID, tokenRequest.Token).Delete(&models.UserPushToken{})

		return c.JSON(http.StatusOK, echo.Map{
			"message": "logged out",
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/delete-account", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		now := time.Now()
		user.ConfirmedDeleteDate = &now
		db.Save(user)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "logged out",
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/set-avatar", func(c echo.Context) error {
		user, ok := c.Get("currentUser").(models.UserAccount)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		}
		var req SetAvatarUploadFileRequest
		if err := c.Bind(&req); err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		db, ok := c.Get("__db").(*gorm.DB)
		if !ok {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Our service is not available, please try again a bit later"})
		}
		asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
		if !ok {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
		}

		var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
		safeFileName := fmt.Sprintf("fullbodyavatars/%v/%s", user.ID, *req.FileName)

		uploadUrl, presignErr := m.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
		if presignErr != nil {
			log.Printf("Unable to presign generate for avatar upload %s!, %s", user.Name, presignErr)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Error while uploading your avatar, please try again",
			})
		}
		user.UserFullBodyImageURL = &safeFileName
		user.FullBodyAvatarStatus = "processing"
		fmt.Println("Presetting user avatar url to ", safeFileName)

		task, err := tasks.NewFullBodyAvatarGenerateTask(user.ID)
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process avatar, please try again"})
		}
		info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process avatar, please try again"})
		}
		fmt.Printf("[Queue] Process Avatar %s task submitted, User ID: %v Task ID %v ", safeFileName, user.ID, info.ID)
		if err := db.Save(&user).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save your avatar"})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Avatar is updated successfully", "upload_url": uploadUrl, "processing_status": user.FullBodyAvatarStatus, "file_name": *req.FileName})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
}
