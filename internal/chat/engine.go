// Package chat turns inbound chat events into replies. Stateless reads
// (menus, lists, detail views) are answered directly; multi-step entry is a
// chain of named steps kept per actor in a state.Store, so a flow survives a
// restart and resumes on the next event.
//
// A step accepts an event only when the actor's stored step is the one it
// expects. Anything else is reported as stale and leaves the stored state
// untouched.
package chat

import (
	"errors"
	"strings"
	"sync"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/services"
	"warehousebot/internal/state"
)

type Engine struct {
	States    state.Store
	Auth      *services.AuthService
	Catalog   *services.CatalogService
	Items     *services.ItemService
	Inventory *services.InventoryService

	locks sync.Map // actor id -> *sync.Mutex
}

func NewEngine(states state.Store, auth *services.AuthService, catalog *services.CatalogService,
	items *services.ItemService, inv *services.InventoryService) *Engine {
	return &Engine{States: states, Auth: auth, Catalog: catalog, Items: items, Inventory: inv}
}

// turn is one event being handled, with the actor's stored step loaded.
type turn struct {
	actor int64
	state state.Name
	p     state.Payload
}

// Handle processes one event start to finish. Events of the same actor are
// handled one at a time; different actors proceed independently.
func (e *Engine) Handle(ev Event) Reply {
	mu, _ := e.locks.LoadOrStore(ev.Actor.ID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	ok, err := e.Auth.Authenticated(ev.Actor.ID)
	if err != nil {
		applog.ActorError(ev.Actor.ID, "auth.lookup.fail", err, nil)
		return Reply{Text: msgFailure}
	}
	if !ok {
		return e.unauthenticated(ev)
	}

	if ev.Kind == Text {
		switch strings.TrimSpace(ev.Text) {
		case "/start", "/menu":
			return mainMenu()
		case "/cancel":
			if err := e.States.Clear(ev.Actor.ID); err != nil {
				return e.fail(&turn{actor: ev.Actor.ID}, "state.clear", err)
			}
			r := mainMenu()
			r.Text = msgCancelled + "\n\n" + r.Text
			return r
		case "/logout":
			if err := e.States.Clear(ev.Actor.ID); err != nil {
				return e.fail(&turn{actor: ev.Actor.ID}, "state.clear", err)
			}
			if err := e.Auth.Logout(ev.Actor.ID); err != nil {
				return e.fail(&turn{actor: ev.Actor.ID}, "auth.logout", err)
			}
			applog.ActorAudit(ev.Actor.ID, "auth.logout", nil)
			return Reply{Text: msgLoggedOut}
		}
	}

	name, p, err := e.States.Get(ev.Actor.ID)
	if err != nil {
		applog.ActorError(ev.Actor.ID, "state.get.fail", err, nil)
		return Reply{Text: msgFailure}
	}
	t := &turn{actor: ev.Actor.ID, state: name, p: p}

	switch ev.Kind {
	case Selection:
		return e.selection(t, parseTag(ev.Tag))
	case Text:
		return e.text(t, ev.Text)
	case Attachment:
		return e.attachment(t, ev)
	}
	return Reply{Text: msgUseMenu, Stale: true}
}

// unauthenticated answers an actor that has not logged in. It never reads or
// writes conversation state.
func (e *Engine) unauthenticated(ev Event) Reply {
	if ev.Kind != Text {
		applog.ActorSecurity(ev.Actor.ID, "auth.reject", map[string]any{"kind": ev.Kind.String()})
		return Reply{Text: msgLoginFirst}
	}
	text := strings.TrimSpace(ev.Text)
	if text == "/start" || text == "" {
		return Reply{Text: msgAskPassword}
	}
	if err := e.Auth.Login(ev.Actor, text); err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.ActorSecurity(ev.Actor.ID, "auth.fail", map[string]any{"username": ev.Actor.Username})
			return Reply{Text: msgBadPassword}
		}
		applog.ActorError(ev.Actor.ID, "auth.login.fail", err, nil)
		return Reply{Text: msgFailure}
	}
	applog.ActorAudit(ev.Actor.ID, "auth.login", map[string]any{"username": ev.Actor.Username})
	r := mainMenu()
	r.Text = msgLoggedIn + "\n\n" + r.Text
	return r
}

func (e *Engine) selection(t *turn, tg tag) Reply {
	switch tg.at(0) {
	case "menu":
		if tg.at(1) == "settings" {
			return settingsMenu()
		}
		return mainMenu()
	case "cancel":
		if err := e.States.Clear(t.actor); err != nil {
			return e.fail(t, "state.clear", err)
		}
		t.state, t.p = state.None, state.Payload{}
		next := parseTag(tg.from(1))
		if len(next) == 0 || next.at(0) == "cancel" {
			next = tag{"menu", "main"}
		}
		r := e.selection(t, next)
		r.Text = msgCancelled + "\n\n" + r.Text
		return r
	case "lowstock":
		return e.lowStock(t)
	case "category":
		return e.categorySelect(t, tg)
	case "subcategory":
		return e.subcategorySelect(t, tg)
	case "brand":
		return e.brandSelect(t, tg)
	case "measure":
		return e.measureSelect(t, tg)
	case "item":
		return e.itemSelect(t, tg)
	}
	return stale()
}

func (e *Engine) text(t *turn, s string) Reply {
	switch t.state {
	case state.None:
		r := mainMenu()
		r.Text = msgUseMenu
		return r
	case stCategoryName:
		return e.categoryName(t, s)
	case stCategoryEditName:
		return e.categoryEditName(t, s)
	case stSubcategoryName:
		return e.subcategoryName(t, s)
	case stSubcategoryEditName:
		return e.subcategoryEditName(t, s)
	case stBrandName:
		return e.brandName(t, s)
	case stBrandEditName:
		return e.brandEditName(t, s)
	case stMeasureName:
		return e.measureName(t, s)
	case stMeasureThreshold:
		return e.measureThreshold(t, s)
	case stMeasureEditName:
		return e.measureEditName(t, s)
	case stMeasureEditThreshold:
		return e.measureEditThreshold(t, s)
	case stItemName, stItemCustomCode, stItemDescription, stItemCount, stItemVideo:
		return e.itemCreateText(t, s)
	case stItemSearch:
		return e.itemSearch(t, s)
	case stItemEditName, stItemEditCustomCode, stItemEditDescription, stItemEditCount, stItemEditVideo:
		return e.itemEditText(t, s)
	}
	// The current step waits for a button or an image.
	return stale()
}

func (e *Engine) attachment(t *turn, ev Event) Reply {
	switch t.state {
	case stItemImages, stItemEditImages:
		return e.addImage(t, ev)
	}
	return stale()
}

// set stores the next step and keeps t in sync with what was stored.
func (e *Engine) set(t *turn, name state.Name, p state.Payload) error {
	if err := e.States.Set(t.actor, name, p); err != nil {
		return err
	}
	t.state, t.p = name, p
	return nil
}

func (e *Engine) clear(t *turn) error {
	if err := e.States.Clear(t.actor); err != nil {
		return err
	}
	t.state, t.p = state.None, state.Payload{}
	return nil
}

// fail reports err to the actor without storage detail. It does not touch state.
func (e *Engine) fail(t *turn, action string, err error) Reply {
	if errors.Is(err, domain.ErrNotFound) {
		r := mainMenu()
		r.Text = msgNotFound
		return r
	}
	applog.ActorError(t.actor, action+".fail", err, map[string]any{"state": string(t.state)})
	r := mainMenu()
	r.Text = msgFailure
	return r
}

// editFailed ends a single-field edit whose target is gone; other failures
// keep the step so the actor can resend.
func (e *Engine) editFailed(t *turn, action string, err error) Reply {
	if errors.Is(err, domain.ErrNotFound) {
		if cerr := e.clear(t); cerr != nil {
			return e.fail(t, "state.clear", cerr)
		}
	}
	return e.fail(t, action, err)
}

func stale() Reply {
	r := mainMenu()
	r.Text = msgStale
	r.Stale = true
	return r
}

// reprompt repeats the current question after bad input.
func reprompt(text string, buttons ...[]Button) Reply {
	return Reply{Text: text, Buttons: buttons}
}

func cancelRow(back string) []Button { return row(btn("Cancel", "cancel:"+back)) }

func backRow(back string) []Button { return row(btn("Back", back)) }

func mainMenu() Reply {
	return Reply{Text: msgMainMenu, Buttons: [][]Button{
		row(btn("Items", "item:menu")),
		row(btn("Low stock", "lowstock:list")),
		row(btn("Settings", "menu:settings")),
	}}
}

func settingsMenu() Reply {
	return Reply{Text: msgSettingsMenu, Buttons: [][]Button{
		row(btn("Categories", "category:menu"), btn("Subcategories", "subcategory:menu")),
		row(btn("Brands", "brand:menu"), btn("Measure types", "measure:menu")),
		backRow("menu:main"),
	}}
}

// listRows renders one button per entry followed by a back row.
func listRows[T any](xs []T, label func(T) string, tagOf func(T) string, back string) [][]Button {
	rows := make([][]Button, 0, len(xs)+1)
	for _, x := range xs {
		rows = append(rows, row(btn(label(x), tagOf(x))))
	}
	return append(rows, backRow(back))
}
