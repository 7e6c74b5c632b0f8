package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/sumeghna/collaborative-whiteboard/internal/config"
	"github.com/sumeghna/collaborative-whiteboard/internal/handlers"
	"github.com/sumeghna/collaborative-whiteboard/internal/security"
	"github.com/sumeghna/collaborative-whiteboard/internal/services"
)

func main() {
	pb := pocketbase.New()

	cfg := config.Load()

	// Room coordination core. The registry is owned here and injected so
	// nothing hangs off process-wide state.
	metrics := services.NewMetrics()
	registry := services.NewRegistry(metrics)
	hub := services.NewHub(metrics)
	presence := services.NewPresence(registry, hub)
	typing := services.NewTypingCoordinator(hub, config.TypingStopTimeout, config.TypingClearTimeout)

	origins := security.NewOriginValidator(cfg.AllowedOrigins)
	wsHandler := handlers.NewWSHandler(hub, presence, typing, metrics, origins)
	status := handlers.NewStatusHandlers(registry, metrics)

	pb.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/ws", wsHandler.HandleWebSocket)

		se.Router.GET("/api/health", status.Health)
		se.Router.GET("/api/rooms", status.Rooms)
		se.Router.GET("/api/rooms/{id}", status.Room)
		se.Router.GET("/api/metrics", handlers.HandleMetrics(metrics))

		// Rendering client
		se.Router.GET("/{path...}", apis.Static(os.DirFS(cfg.PublicDir), true))

		return se.Next()
	})

	if err := pb.Start(); err != nil {
		log.Fatal(err)
	}
}
