package handlers

import (
	"crypto/subtle"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"warehousebot/internal/chat"
	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/validate"
)

// ChatHandler is the transport in front of the chat engine.
type ChatHandler struct {
	Engine *chat.Engine
	Token  string
}

type actorJSON struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type eventRequest struct {
	Actor actorJSON `json:"actor"`
	Kind  string    `json:"kind" validate:"required,oneof=selection text"`
	Tag   string    `json:"tag" validate:"required_if=Kind selection,max=128"`
	Text  string    `json:"text" validate:"max=4096"`
}

var imageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true}

// RequireToken guards the chat routes when a token is configured.
func (h *ChatHandler) RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h.Token == "" {
			return c.Next()
		}
		got := c.Get("X-Chat-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
			applog.Security(c, "chat.token.reject", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

// Event accepts a selection or a text message as JSON.
func (h *ChatHandler) Event(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body", nil)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid event", validate.Messages(err))
	}
	c.Locals("actor", req.Actor.ID)
	reply := h.Engine.Handle(chat.Event{
		Actor: domain.Actor{ID: req.Actor.ID, Username: req.Actor.Username, FirstName: req.Actor.FirstName, LastName: req.Actor.LastName},
		Kind:  chat.ParseKind(req.Kind),
		Tag:   req.Tag,
		Text:  req.Text,
	})
	return c.JSON(reply)
}

// Attachment accepts one image as multipart form data: actor_id, optional
// username/first_name/last_name, and the file under "image".
func (h *ChatHandler) Attachment(c *fiber.Ctx) error {
	actorID, ok := validate.ID(c.FormValue("actor_id"))
	if !ok {
		return badRequest(c, "invalid actor_id", nil)
	}
	c.Locals("actor", actorID)
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "missing image", nil)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !imageExts[ext] {
		applog.Security(c, "chat.attachment.type.reject", map[string]any{"ext": ext})
		return badRequest(c, "unsupported image type", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	reply := h.Engine.Handle(chat.Event{
		Actor: domain.Actor{
			ID: actorID, Username: c.FormValue("username"),
			FirstName: c.FormValue("first_name"), LastName: c.FormValue("last_name"),
		},
		Kind: chat.Attachment,
		File: f,
		Ext:  ext,
	})
	return c.JSON(reply)
}
