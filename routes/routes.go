package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"hms-backend/controllers"
	"hms-backend/middleware"
	"hms-backend/utils"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return utils.IsValidPhone(fl.Field().String())
		})
	}
}

// SetupRouter wires the gin engine: CORS, request logging, the public
// auth endpoint and the authenticated /api groups.
func SetupRouter(
	logger *logrus.Logger,
	jwtSecret string,
	ac *controllers.AuthController,
	rc *controllers.ReservationController,
	roomCtl *controllers.RoomController,
	bc *controllers.BranchController,
	rtc *controllers.RoomTypeController,
	gc *controllers.GuestController,
	tc *controllers.TaxController,
) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", ac.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(jwtSecret))
	{
		reservations := authed.Group("/reservations")
		{
			reservations.GET("", rc.GetReservations)
			reservations.POST("", rc.CreateReservation)
			reservations.GET("/:id", rc.GetReservation)
			reservations.PATCH("/:id", rc.UpdateReservation)
			reservations.DELETE("/:id", rc.CancelReservation)
		}

		rooms := authed.Group("/rooms")
		{
			// availability must come before /:id
			rooms.GET("/availability", roomCtl.GetAvailability)
			rooms.GET("", roomCtl.GetRooms)
			rooms.POST("", roomCtl.CreateRoom)
			rooms.PATCH("/:id", roomCtl.UpdateRoom)
			rooms.PUT("/:id", roomCtl.UpdateRoom)
			rooms.DELETE("/:id", roomCtl.DeleteRoom)
		}

		branches := authed.Group("/branches")
		{
			branches.GET("", bc.GetBranches)
			branches.POST("", bc.CreateBranch)
			branches.GET("/:id", bc.GetBranch)
			branches.PUT("/:id", bc.UpdateBranch)
			branches.DELETE("/:id", bc.DeleteBranch)
		}

		roomTypes := authed.Group("/room-types")
		{
			roomTypes.GET("", rtc.GetRoomTypes)
			roomTypes.POST("", rtc.CreateRoomType)
			roomTypes.PUT("/:id", rtc.UpdateRoomType)
			roomTypes.DELETE("/:id", rtc.DeleteRoomType)
		}

		guests := authed.Group("/guests")
		{
			guests.GET("", gc.GetGuests)
			guests.POST("", gc.CreateGuest)
			guests.GET("/:id", gc.GetGuestByID)
			guests.PUT("/:id", gc.UpdateGuest)
			guests.DELETE("/:id", gc.DeleteGuest)
		}

		taxes := authed.Group("/taxes")
		{
			taxes.GET("/reservation", tc.GetReservationTaxes)
			taxes.GET("", tc.GetTaxes)
			taxes.POST("", tc.CreateTax)
			taxes.PUT("/:id", tc.UpdateTax)
			taxes.DELETE("/:id", tc.DeleteTax)
		}
	}

	return r
}
