package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"ops-dashboard/app"
	"ops-dashboard/middleware"
	"ops-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// HeartbeatInterval is how often an idle change stream sends a comment line
// so proxies keep the connection open.
var HeartbeatInterval = 15 * time.Second

// StreamChanges streams change notifications for one table as server-sent
// events. Each event carries the table, the change type and the row id; the
// client is expected to refetch.
func StreamChanges(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tableName := c.Params("table")
		if !models.KnownTable(tableName) {
			return notFound(c, "Unknown table")
		}

		userID := middleware.GetUserID(c)
		changes, cancel := a.Hub.Subscribe(tableName, userID)

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		logger := a.Logger.With("table", tableName, "user_id", userID)
		logger.Debug("realtime subscriber connected")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()
			defer logger.Debug("realtime subscriber disconnected")

			heartbeat := time.NewTicker(HeartbeatInterval)
			defer heartbeat.Stop()

			fmt.Fprintf(w, ": subscribed %s\n\n", tableName)
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case change, ok := <-changes:
					if !ok {
						return
					}
					data, err := json.Marshal(change)
					if err != nil {
						logger.Error("failed to encode change", "error", err)
						continue
					}
					fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				case <-heartbeat.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))

		return nil
	}
}
