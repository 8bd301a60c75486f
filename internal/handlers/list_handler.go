package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/dto"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/services"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/session"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/tracking"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ListHandler exposes lists over HTTP. Every mutation loads the list, applies
// a tracking operation and hands the result to ListService.Save.
type ListHandler struct {
	lists    *services.ListService
	sessions session.Store
}

func NewListHandler(lists *services.ListService, sessions session.Store) *ListHandler {
	return &ListHandler{lists: lists, sessions: sessions}
}

func unauthorized(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// load resolves the :id list of the caller. When the list is nil the
// response is already written and the error is the handler's result.
func (h *ListHandler) load(c *fiber.Ctx) (uuid.UUID, *tracking.List, error) {
	userID, err := session.GetUserID(c)
	if err != nil {
		return uuid.Nil, nil, unauthorized(c)
	}
	listID, ok := paramID(c, "id")
	if !ok {
		return uuid.Nil, nil, badRequest(c, "Invalid list id")
	}
	l, err := h.lists.Load(c.UserContext(), userID, listID)
	if err != nil {
		return uuid.Nil, nil, respondError(c, err)
	}
	return userID, l, nil
}

func (h *ListHandler) save(c *fiber.Ctx, userID uuid.UUID, l tracking.List, status int) error {
	saved, err := h.lists.Save(c.UserContext(), userID, l)
	if err != nil {
		return respondError(c, err)
	}
	if saved == nil {
		return c.JSON(fiber.Map{"message": "List removed"})
	}
	return c.Status(status).JSON(saved)
}

func (h *ListHandler) All(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	lists, err := h.lists.LoadAll(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListsResponse{Lists: lists})
}

func (h *ListHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "List name is required")
	}
	date := today()
	if req.Date != nil {
		date = *req.Date
	}

	l := tracking.NewList(name, userID, date)
	for _, itemName := range req.Items {
		if itemName = strings.TrimSpace(itemName); itemName != "" {
			l = tracking.AddItem(l, tracking.NewItem(itemName))
		}
	}

	saved, err := h.lists.Save(c.UserContext(), userID, l)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.sessions.SetCurrentList(c.UserContext(), userID, saved.ID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *ListHandler) Today(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	l, err := h.lists.Today(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.sessions.SetCurrentList(c.UserContext(), userID, l.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

func (h *ListHandler) Current(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listID, ok, err := h.sessions.CurrentList(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "No current list")
	}

	l, err := h.lists.Load(c.UserContext(), userID, listID)
	if errors.Is(err, services.ErrListNotFound) {
		_ = h.sessions.ClearCurrentList(c.UserContext(), userID)
		return errorJSON(c, fiber.StatusNotFound, "No current list")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

func (h *ListHandler) SetCurrent(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.SetCurrentListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	l, err := h.lists.Load(c.UserContext(), userID, req.ListID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.sessions.SetCurrentList(c.UserContext(), userID, l.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

func (h *ListHandler) Lookup(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "Query parameter name is required")
	}
	l, err := h.lists.LoadByName(c.UserContext(), userID, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

// Sync saves a complete tagged list sent by the client.
func (h *ListHandler) Sync(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var l tracking.List
	if err := c.BodyParser(&l); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return h.save(c, userID, l, fiber.StatusOK)
}

func (h *ListHandler) Get(c *fiber.Ctx) error {
	_, l, err := h.load(c)
	if l == nil {
		return err
	}
	return c.JSON(l)
}

func (h *ListHandler) Update(c *fiber.Ctx) error {
	userID, l, err := h.load(c)
	if l == nil {
		return err
	}
	var req dto.UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	name, date := l.Name, l.Date
	if req.Name != nil {
		if name = strings.TrimSpace(*req.Name); name == "" {
			return badRequest(c, "List name is required")
		}
	}
	if req.Date != nil {
		date = *req.Date
	}
	return h.save(c, userID, tracking.RenameList(*l, name, date), fiber.StatusOK)
}

func (h *ListHandler) Delete(c *fiber.Ctx) error {
	userID, l, err := h.load(c)
	if l == nil {
		return err
	}
	if _, err := h.lists.Save(c.UserContext(), userID, tracking.RemoveList(*l)); err != nil {
		return respondError(c, err)
	}
	if current, ok, err := h.sessions.CurrentList(c.UserContext(), userID); err == nil && ok && current == l.ID {
		_ = h.sessions.ClearCurrentList(c.UserContext(), userID)
	}
	return c.JSON(fiber.Map{"message": "List removed"})
}

func (h *ListHandler) AddItem(c *fiber.Ctx) error {
	userID, l, err := h.load(c)
	if l == nil {
		return err
	}
	var req dto.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "Item name is required")
	}

	item := tracking.NewItem(name)
	item.Checked = req.Checked
	return h.save(c, userID, tracking.AddItem(*l, item), fiber.StatusCreated)
}

func (h *ListHandler) UpdateItem(c *fiber.Ctx) error {
	userID, l, err := h.load(c)
	if l == nil {
		return err
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item id")
	}
	if _, found := l.Find(tracking.ByID(itemID)); !found {
		return respondError(c, services.ErrItemNotFound)
	}
	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	changes := tracking.ItemChanges{Checked: req.Checked}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return badRequest(c, "Item name is required")
		}
		changes.Name = &name
	}
	return h.save(c, userID, tracking.EditItem(*l, tracking.ByID(itemID), changes), fiber.StatusOK)
}

func (h *ListHandler) DeleteItem(c *fiber.Ctx) error {
	userID, l, err := h.load(c)
	if l == nil {
		return err
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item id")
	}
	if _, found := l.Find(tracking.ByID(itemID)); !found {
		return respondError(c, services.ErrItemNotFound)
	}
	return h.save(c, userID, tracking.RemoveItem(*l, tracking.ByID(itemID)), fiber.StatusOK)
}
