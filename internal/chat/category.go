package chat

import (
	"fmt"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

func categoryMenu() Reply {
	return Reply{Text: msgCategoryMenu, Buttons: [][]Button{
		row(btn("New category", "category:create"), btn("All categories", "category:list")),
		backRow("menu:settings"),
	}}
}

func (e *Engine) categorySelect(t *turn, tg tag) Reply {
	switch tg.at(1) {
	case "menu":
		return categoryMenu()
	case "create":
		if err := e.set(t, stCategoryName, state.Payload{}); err != nil {
			return e.fail(t, "category.create", err)
		}
		return reprompt(msgAskCategoryName, cancelRow("category:menu"))
	case "list":
		cats, err := e.Catalog.ListCategories()
		if err != nil {
			return e.fail(t, "category.list", err)
		}
		text := msgCategoryMenu
		if len(cats) == 0 {
			text = msgNothingToList
		}
		return Reply{Text: text, Buttons: listRows(cats,
			func(c domain.Category) string { return c.Name },
			func(c domain.Category) string { return tagf("category:view:%d", c.ID) },
			"category:menu")}
	}

	id, ok := tg.id(2)
	if !ok {
		return stale()
	}
	c, err := e.Catalog.GetCategory(id)
	if err != nil {
		return e.fail(t, "category.get", err)
	}
	switch tg.at(1) {
	case "view":
		subs, err := e.Catalog.SubcategoriesOf(id)
		if err != nil {
			return e.fail(t, "category.view", err)
		}
		return Reply{
			Text: fmt.Sprintf("%s (%s)\nSubcategories: %d\nCreated: %s", c.Name, c.Code, len(subs), c.CreatedAt),
			Buttons: [][]Button{
				row(btn("Rename", tagf("category:edit:%d", id)), btn("Delete", tagf("category:delete_confirm:%d", id))),
				backRow("category:list"),
			},
		}
	case "edit":
		p := state.Payload{}
		p.SetInt(keyID, id)
		if err := e.set(t, stCategoryEditName, p); err != nil {
			return e.fail(t, "category.edit", err)
		}
		return reprompt(msgAskCategoryEdit, cancelRow(tagf("category:view:%d", id)))
	case "delete_confirm":
		return Reply{Text: c.Name + "\n" + msgConfirmCatDel, Buttons: [][]Button{
			row(btn("Yes, delete", tagf("category:delete:%d", id)), btn("No", tagf("category:view:%d", id))),
		}}
	case "delete":
		if err := e.Catalog.DeleteCategory(id); err != nil {
			return e.fail(t, "category.delete", err)
		}
		applog.ActorAudit(t.actor, "category.delete", map[string]any{"id": id, "code": c.Code})
		r := categoryMenu()
		r.Text = msgDeleted
		return r
	}
	return stale()
}

func (e *Engine) categoryName(t *turn, s string) Reply {
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow("category:menu"))
	}
	c, err := e.Catalog.CreateCategory(name)
	if err != nil {
		return e.fail(t, "category.create", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "category.create", map[string]any{"id": c.ID, "code": c.Code})
	r := categoryMenu()
	r.Text = fmt.Sprintf("Category %q created (%s).", c.Name, c.Code)
	return r
}

func (e *Engine) categoryEditName(t *turn, s string) Reply {
	id, _ := t.p.Int(keyID)
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow(tagf("category:view:%d", id)))
	}
	if err := e.Catalog.RenameCategory(id, name); err != nil {
		return e.editFailed(t, "category.rename", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "category.rename", map[string]any{"id": id})
	return Reply{Text: msgRenamed, Buttons: [][]Button{backRow(tagf("category:view:%d", id))}}
}
