package v1

import (
	"task-management/internal/api/response"
	"task-management/internal/api/v1/handlers"
	"task-management/internal/config"
	"task-management/internal/middleware"
	"task-management/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

// NewApp builds the fiber app with middleware and all v1 routes.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: response.ErrorHandler,
	})

	app.Use(middleware.ErrorHandler(deps.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(deps.Resolver)

	// Auth
	auth := handlers.NewAuthHandler(deps.Credentials, deps.Tokens, deps.Log)
	api.Post("/auth/signup", auth.SignUp)
	api.Post("/auth/signin", auth.SignIn)

	// Task
	tasks := handlers.NewTaskHandler(deps.Tasks, deps.Validate, deps.Log)
	taskRoutes := api.Group("/tasks", requireAuth)
	taskRoutes.Get("/", tasks.ListTasks)
	taskRoutes.Post("/", tasks.CreateTask)
	taskRoutes.Get("/:id", tasks.GetTask)
	taskRoutes.Patch("/:id/status", tasks.UpdateTaskStatus)
	taskRoutes.Delete("/:id", tasks.DeleteTask)

	// Live task events for the caller
	api.Get("/ws", requireAuth, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(func(c *websocket.Conn) {
		user, _ := c.Locals(middleware.UserKey).(models.User)
		deps.Hub.Serve(c, user.ID)
	}))
}
