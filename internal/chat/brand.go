package chat

import (
	"fmt"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

func brandMenu() Reply {
	return Reply{Text: msgBrandMenu, Buttons: [][]Button{
		row(btn("New brand", "brand:create"), btn("All brands", "brand:list")),
		backRow("menu:settings"),
	}}
}

func (e *Engine) brandSelect(t *turn, tg tag) Reply {
	switch tg.at(1) {
	case "menu":
		return brandMenu()
	case "create":
		if err := e.set(t, stBrandName, state.Payload{}); err != nil {
			return e.fail(t, "brand.create", err)
		}
		return reprompt(msgAskBrandName, cancelRow("brand:menu"))
	case "list":
		brands, err := e.Catalog.ListBrands()
		if err != nil {
			return e.fail(t, "brand.list", err)
		}
		text := msgBrandMenu
		if len(brands) == 0 {
			text = msgNothingToList
		}
		return Reply{Text: text, Buttons: listRows(brands,
			func(b domain.Brand) string { return b.Name },
			func(b domain.Brand) string { return tagf("brand:view:%d", b.ID) },
			"brand:menu")}
	}

	id, ok := tg.id(2)
	if !ok {
		return stale()
	}
	b, err := e.Catalog.GetBrand(id)
	if err != nil {
		return e.fail(t, "brand.get", err)
	}
	switch tg.at(1) {
	case "view":
		items, err := e.Items.ByBrand(id)
		if err != nil {
			return e.fail(t, "brand.view", err)
		}
		return Reply{
			Text: fmt.Sprintf("%s (%s)\nItems: %d\nCreated: %s", b.Name, b.Code, len(items), b.CreatedAt),
			Buttons: [][]Button{
				row(btn("Rename", tagf("brand:edit:%d", id)), btn("Delete", tagf("brand:delete_confirm:%d", id))),
				backRow("brand:list"),
			},
		}
	case "edit":
		p := state.Payload{}
		p.SetInt(keyID, id)
		if err := e.set(t, stBrandEditName, p); err != nil {
			return e.fail(t, "brand.edit", err)
		}
		return reprompt(msgAskBrandEdit, cancelRow(tagf("brand:view:%d", id)))
	case "delete_confirm":
		return Reply{Text: b.Name + "\n" + msgConfirmBrDel, Buttons: [][]Button{
			row(btn("Yes, delete", tagf("brand:delete:%d", id)), btn("No", tagf("brand:view:%d", id))),
		}}
	case "delete":
		if err := e.Catalog.DeleteBrand(id); err != nil {
			return e.fail(t, "brand.delete", err)
		}
		applog.ActorAudit(t.actor, "brand.delete", map[string]any{"id": id, "code": b.Code})
		r := brandMenu()
		r.Text = msgDeleted
		return r
	}
	return stale()
}

func (e *Engine) brandName(t *turn, s string) Reply {
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow("brand:menu"))
	}
	b, err := e.Catalog.CreateBrand(name)
	if err != nil {
		return e.fail(t, "brand.create", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "brand.create", map[string]any{"id": b.ID, "code": b.Code})
	r := brandMenu()
	r.Text = fmt.Sprintf("Brand %q created (%s).", b.Name, b.Code)
	return r
}

func (e *Engine) brandEditName(t *turn, s string) Reply {
	id, _ := t.p.Int(keyID)
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow(tagf("brand:view:%d", id)))
	}
	if err := e.Catalog.RenameBrand(id, name); err != nil {
		return e.editFailed(t, "brand.rename", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "brand.rename", map[string]any{"id": id})
	return Reply{Text: msgRenamed, Buttons: [][]Button{backRow(tagf("brand:view:%d", id))}}
}
