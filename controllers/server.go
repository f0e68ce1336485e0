package controllers

import (
	"context"
	"log"
	"net/http"
	"os"

	"closetlyapi/models"
	"closetlyapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	weatherService services.WeatherServiceProvider,
	llmProcessor services.LLMProcessor,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
) *echo.Echo {

	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("occasion", models.ValidateOccasion)
	v.RegisterValidation("style", models.ValidateStyle)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	authGroup := e.Group("auth")
	controller := AuthController{Google: googleService, FirebaseApp: firebaseApp, AWSService: awsService}
	controller.ProfileRoutes(authGroup)

	companyController := CompanyController{AWSService: awsService, FirebaseApp: firebaseApp}
	companyGroup := e.Group("/closet/:companyId", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserCompanyMiddleware)
	companyController.CompanyRoutes(companyGroup)

	appGroup := e.Group("app", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))))
	appGroup.Use(UserMiddleware)

	profileController := ProfileController{}
	profileGroup := appGroup.Group("/profile")
	profileController.ProfileRoutes(profileGroup)

	clothesController := ClothesController{Google: googleService, AWSService: awsService, FirebaseApp: firebaseApp, URLCache: urlCache}
	clothesGroup := appGroup.Group("/clothes")
	clothesController.ClothingRoutes(clothesGroup)

	outfitsController := OutfitsController{
		AWSService:  awsService,
		URLCache:    urlCache,
		Weather:     weatherService,
		LLM:         llmProcessor,
		FirebaseApp: firebaseApp,
	}
	outfitsGroup := appGroup.Group("/outfits")
	outfitsController.OutfitRoutes(outfitsGroup)

	webhooksController := WebhooksController{Google: googleService, FirebaseApp: firebaseApp}
	webhookGroup := e.Group("/webhooks")
	webhooksController.SetupRoutes(webhookGroup)

	return e
}
