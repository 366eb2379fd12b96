package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/mvickers/driftscreen"
	"github.com/mvickers/driftscreen/internal/compositor"
)

// GET /status
func statusHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:       "ok",
			Message:      "driftscreen is running",
			Version:      strings.Trim(driftscreen.Version, "\n\r "),
			PID:          os.Getpid(),
			Socket:       SocketPath(),
			Config:       viper.ConfigFileUsed(),
			CurrentImage: m.CurrentImage(),
			ActiveEffect: m.ActiveEffect(),
			Outputs:      m.Outputs(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(Command{Type: CommandStop})
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// POST /next
func nextHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(Command{Type: CommandNext})
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// POST /trigger
func triggerHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Effect string `json:"effect"`
		}
		if err := c.Bind(&req); err != nil || req.Effect == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected {\"effect\": \"name\"}"})
		}
		if req.Effect != "random" && compositor.KindFromName(req.Effect) == compositor.KindNone {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown effect " + req.Effect})
		}

		m.EnqueueCommand(Command{Type: CommandTrigger, Args: []string{req.Effect}})
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "effect": req.Effect})
	}
}

// POST /load
func loadHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var images []string
		if err := c.Bind(&images); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON array of image paths"})
		}

		m.EnqueueCommand(Command{
			Type: CommandLoad,
			Args: images,
		})

		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"loaded": len(images),
		})
	}
}
