package chat

import (
	"errors"
	"fmt"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

func subcategoryMenu() Reply {
	return Reply{Text: msgSubcategoryMenu, Buttons: [][]Button{
		row(btn("New subcategory", "subcategory:create"), btn("All subcategories", "subcategory:list")),
		backRow("menu:settings"),
	}}
}

func subcategoryParents(cats []domain.Category) Reply {
	rows := make([][]Button, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, row(btn(c.Name, tagf("subcategory:create:cat:%d", c.ID))))
	}
	return Reply{Text: msgPickSubParent, Buttons: append(rows, cancelRow("subcategory:menu"))}
}

func (e *Engine) subcategorySelect(t *turn, tg tag) Reply {
	switch tg.at(1) {
	case "menu":
		return subcategoryMenu()
	case "create":
		if tg.at(2) == "cat" {
			return e.subcategoryParent(t, tg)
		}
		cats, err := e.Catalog.ListCategories()
		if err != nil {
			return e.fail(t, "subcategory.create", err)
		}
		if len(cats) == 0 {
			r := subcategoryMenu()
			r.Text = msgNeedCategory
			return r
		}
		if err := e.set(t, stSubcategoryCategory, state.Payload{}); err != nil {
			return e.fail(t, "subcategory.create", err)
		}
		return subcategoryParents(cats)
	case "list":
		subs, err := e.Catalog.ListSubcategories()
		if err != nil {
			return e.fail(t, "subcategory.list", err)
		}
		text := msgSubcategoryMenu
		if len(subs) == 0 {
			text = msgNothingToList
		}
		return Reply{Text: text, Buttons: listRows(subs,
			func(s domain.Subcategory) string { return s.CategoryName + " / " + s.Name },
			func(s domain.Subcategory) string { return tagf("subcategory:view:%d", s.ID) },
			"subcategory:menu")}
	}

	id, ok := tg.id(2)
	if !ok {
		return stale()
	}
	s, err := e.Catalog.GetSubcategory(id)
	if err != nil {
		return e.fail(t, "subcategory.get", err)
	}
	switch tg.at(1) {
	case "view":
		items, err := e.Items.BySubcategory(id)
		if err != nil {
			return e.fail(t, "subcategory.view", err)
		}
		return Reply{
			Text: fmt.Sprintf("%s (%s)\nCategory: %s\nItems: %d\nCreated: %s",
				s.Name, s.Code, s.CategoryName, len(items), s.CreatedAt),
			Buttons: [][]Button{
				row(btn("Rename", tagf("subcategory:edit:%d", id)), btn("Delete", tagf("subcategory:delete_confirm:%d", id))),
				backRow("subcategory:list"),
			},
		}
	case "edit":
		p := state.Payload{}
		p.SetInt(keyID, id)
		if err := e.set(t, stSubcategoryEditName, p); err != nil {
			return e.fail(t, "subcategory.edit", err)
		}
		return reprompt(msgAskSubcategoryEdit, cancelRow(tagf("subcategory:view:%d", id)))
	case "delete_confirm":
		return Reply{Text: s.Name + "\n" + msgConfirmSubDel, Buttons: [][]Button{
			row(btn("Yes, delete", tagf("subcategory:delete:%d", id)), btn("No", tagf("subcategory:view:%d", id))),
		}}
	case "delete":
		if err := e.Catalog.DeleteSubcategory(id); err != nil {
			return e.fail(t, "subcategory.delete", err)
		}
		applog.ActorAudit(t.actor, "subcategory.delete", map[string]any{"id": id, "code": s.Code})
		r := subcategoryMenu()
		r.Text = msgDeleted
		return r
	}
	return stale()
}

// subcategoryParent handles subcategory:create:cat:<id>.
func (e *Engine) subcategoryParent(t *turn, tg tag) Reply {
	if t.state != stSubcategoryCategory {
		return stale()
	}
	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	if _, err := e.Catalog.GetCategory(id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return e.fail(t, "subcategory.parent", err)
		}
		cats, lerr := e.Catalog.ListCategories()
		if lerr != nil {
			return e.fail(t, "subcategory.parent", lerr)
		}
		r := subcategoryParents(cats)
		r.Text = msgNotFound + "\n" + r.Text
		return r
	}
	p := t.p.Clone()
	p.SetInt(keyCategoryID, id)
	if err := e.set(t, stSubcategoryName, p); err != nil {
		return e.fail(t, "subcategory.parent", err)
	}
	return reprompt(msgAskSubcategoryName, cancelRow("subcategory:menu"))
}

func (e *Engine) subcategoryName(t *turn, s string) Reply {
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow("subcategory:menu"))
	}
	catID, _ := t.p.Int(keyCategoryID)
	sub, err := e.Catalog.CreateSubcategory(catID, name)
	if err != nil {
		return e.editFailed(t, "subcategory.create", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "subcategory.create", map[string]any{"id": sub.ID, "code": sub.Code, "category_id": catID})
	r := subcategoryMenu()
	r.Text = fmt.Sprintf("Subcategory %q created under %s (%s).", sub.Name, sub.CategoryName, sub.Code)
	return r
}

func (e *Engine) subcategoryEditName(t *turn, s string) Reply {
	id, _ := t.p.Int(keyID)
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow(tagf("subcategory:view:%d", id)))
	}
	if err := e.Catalog.RenameSubcategory(id, name); err != nil {
		return e.editFailed(t, "subcategory.rename", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "subcategory.rename", map[string]any{"id": id})
	return Reply{Text: msgRenamed, Buttons: [][]Button{backRow(tagf("subcategory:view:%d", id))}}
}
