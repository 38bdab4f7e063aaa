package chat

import (
	"fmt"
	"strings"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

// listLimit caps how many items one chat list shows.
const listLimit = 50

func itemMenu() Reply {
	return Reply{Text: msgItemMenu, Buttons: [][]Button{
		row(btn("New item", "item:create"), btn("Search", "item:search")),
		row(btn("All items", "item:list"), btn("By brand", "item:list:brand"), btn("By category", "item:list:cat")),
		backRow("menu:main"),
	}}
}

func itemButtons(id int64) [][]Button {
	return [][]Button{
		row(btn("Images", tagf("item:images:%d", id)), btn("Edit", tagf("item:edit:%d", id))),
		row(btn("Delete", tagf("item:delete_confirm:%d", id))),
		backRow("item:menu"),
	}
}

// itemText renders the detail view. Every reference is shown by name.
func itemText(it domain.ItemDetail, images int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", it.Name, it.Code)
	fmt.Fprintf(&b, "Code: %s\n", it.CustomCode)
	fmt.Fprintf(&b, "Category: %s / %s\n", it.CategoryName, it.SubcategoryName)
	fmt.Fprintf(&b, "Brand: %s\n", it.BrandName)
	fmt.Fprintf(&b, "Available: %s %s", it.AvailableCount, it.MeasureTypeName)
	if it.LowStock() {
		fmt.Fprintf(&b, " (low, threshold %s)", it.LowStockThreshold)
	}
	b.WriteString("\n")
	if it.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", it.Description)
	}
	if it.VideoURL != "" {
		fmt.Fprintf(&b, "Video: %s\n", it.VideoURL)
	}
	fmt.Fprintf(&b, "Images: %d\n", images)
	fmt.Fprintf(&b, "Created: %s\nUpdated: %s", it.CreatedAt, it.UpdatedAt)
	return b.String()
}

func itemRows(items []domain.ItemDetail, back string) [][]Button {
	return listRows(items,
		func(it domain.ItemDetail) string { return fmt.Sprintf("%s (%s)", it.Name, it.CustomCode) },
		func(it domain.ItemDetail) string { return tagf("item:view:%d", it.ID) },
		back)
}

func (e *Engine) itemSelect(t *turn, tg tag) Reply {
	switch tg.at(1) {
	case "menu":
		return itemMenu()
	case "create":
		return e.itemCreateSelect(t, tg)
	case "list":
		return e.itemList(t, tg)
	case "search":
		if err := e.set(t, stItemSearch, state.Payload{}); err != nil {
			return e.fail(t, "item.search", err)
		}
		return reprompt(msgAskSearch, cancelRow("item:menu"))
	case "edit":
		return e.itemEditSelect(t, tg)
	}

	id, ok := tg.id(2)
	if !ok {
		return stale()
	}
	switch tg.at(1) {
	case "view":
		return e.itemView(t, id)
	case "images":
		return e.itemImages(t, id)
	case "image_delete":
		imgID, ok := tg.id(3)
		if !ok {
			return stale()
		}
		if err := e.Items.DeleteImage(id, imgID); err != nil {
			return e.fail(t, "item.image.delete", err)
		}
		applog.ActorAudit(t.actor, "item.image.delete", map[string]any{"item_id": id, "image_id": imgID})
		r := e.itemImages(t, id)
		r.Text = msgImageDeleted + "\n" + r.Text
		return r
	case "delete_confirm":
		it, err := e.Items.Get(id)
		if err != nil {
			return e.fail(t, "item.get", err)
		}
		return Reply{Text: it.Name + "\n" + msgConfirmItemDel, Buttons: [][]Button{
			row(btn("Yes, delete", tagf("item:delete:%d", id)), btn("No", tagf("item:view:%d", id))),
		}}
	case "delete":
		it, err := e.Items.Get(id)
		if err != nil {
			return e.fail(t, "item.get", err)
		}
		if err := e.Items.Delete(id); err != nil {
			return e.fail(t, "item.delete", err)
		}
		applog.ActorAudit(t.actor, "item.delete", map[string]any{"id": id, "code": it.Code})
		r := itemMenu()
		r.Text = msgDeleted
		return r
	}
	return stale()
}

// itemImages lists the stored images with one delete button each.
func (e *Engine) itemImages(t *turn, id int64) Reply {
	it, err := e.Items.Get(id)
	if err != nil {
		return e.fail(t, "item.images", err)
	}
	imgs, err := e.Items.ListImages(id)
	if err != nil {
		return e.fail(t, "item.images", err)
	}
	r := Reply{Text: it.Name}
	if len(imgs) == 0 {
		r.Text += "\n" + msgNoImages
	}
	for i, img := range imgs {
		r.Images = append(r.Images, img.Path)
		r.Buttons = append(r.Buttons, row(btn(fmt.Sprintf("Delete image %d", i+1), tagf("item:image_delete:%d:%d", id, img.ID))))
	}
	r.Buttons = append(r.Buttons, backRow(tagf("item:view:%d", id)))
	return r
}

func (e *Engine) itemView(t *turn, id int64) Reply {
	it, err := e.Items.Get(id)
	if err != nil {
		return e.fail(t, "item.view", err)
	}
	n, err := e.Items.ImageCount(id)
	if err != nil {
		return e.fail(t, "item.view", err)
	}
	return Reply{Text: itemText(it, n), Buttons: itemButtons(id)}
}

// itemList handles item:list, item:list:brand[:<id>], item:list:cat[:<id>]
// and item:list:sub:<id>.
func (e *Engine) itemList(t *turn, tg tag) Reply {
	var (
		items []domain.ItemDetail
		err   error
		head  string
		back  = "item:menu"
	)
	switch tg.at(2) {
	case "":
		var total int
		items, total, err = e.Items.List(listLimit, 0)
		head = fmt.Sprintf("Items (%d of %d)", len(items), total)
	case "brand":
		id, ok := tg.id(3)
		if !ok {
			brands, err := e.Catalog.ListBrands()
			if err != nil {
				return e.fail(t, "item.list.brand", err)
			}
			return Reply{Text: msgPickBrand, Buttons: listRows(brands,
				func(b domain.Brand) string { return b.Name },
				func(b domain.Brand) string { return tagf("item:list:brand:%d", b.ID) },
				"item:menu")}
		}
		b, gerr := e.Catalog.GetBrand(id)
		if gerr != nil {
			return e.fail(t, "item.list.brand", gerr)
		}
		items, err = e.Items.ByBrand(id)
		head, back = b.Name, "item:list:brand"
	case "cat":
		id, ok := tg.id(3)
		if !ok {
			cats, err := e.Catalog.ListCategories()
			if err != nil {
				return e.fail(t, "item.list.cat", err)
			}
			return Reply{Text: msgPickCategory, Buttons: listRows(cats,
				func(c domain.Category) string { return c.Name },
				func(c domain.Category) string { return tagf("item:list:cat:%d", c.ID) },
				"item:menu")}
		}
		subs, err := e.Catalog.SubcategoriesOf(id)
		if err != nil {
			return e.fail(t, "item.list.cat", err)
		}
		return Reply{Text: msgPickSubcategory, Buttons: listRows(subs,
			func(s domain.Subcategory) string { return s.Name },
			func(s domain.Subcategory) string { return tagf("item:list:sub:%d", s.ID) },
			"item:list:cat")}
	case "sub":
		id, ok := tg.id(3)
		if !ok {
			return stale()
		}
		s, gerr := e.Catalog.GetSubcategory(id)
		if gerr != nil {
			return e.fail(t, "item.list.sub", gerr)
		}
		items, err = e.Items.BySubcategory(id)
		head, back = s.CategoryName+" / "+s.Name, tagf("item:list:cat:%d", s.CategoryID)
	default:
		return stale()
	}
	if err != nil {
		return e.fail(t, "item.list", err)
	}
	if len(items) == 0 {
		head += "\n" + msgNothingToList
	}
	return Reply{Text: head, Buttons: itemRows(items, back)}
}

func (e *Engine) itemSearch(t *turn, s string) Reply {
	q, ok := validate.Q(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow("item:menu"))
	}
	items, err := e.Items.Search(q)
	if err != nil {
		return e.fail(t, "item.search", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	text := fmt.Sprintf("Results for %q: %d", q, len(items))
	if len(items) == 0 {
		text = msgNoResults
	}
	return Reply{Text: text, Buttons: itemRows(items, "item:menu")}
}

// editSteps maps the field segment of item:edit:<field>:<id> to its step.
var editSteps = map[string]struct {
	step   state.Name
	prompt string
}{
	"name":        {stItemEditName, msgAskItemEditName},
	"custom_code": {stItemEditCustomCode, msgAskItemEditCode},
	"description": {stItemEditDescription, msgAskItemEditDesc},
	"count":       {stItemEditCount, msgAskItemEditCount},
	"video":       {stItemEditVideo, msgAskItemEditVideo},
	"image":       {stItemEditImages, msgAskImages},
}

func (e *Engine) itemEditSelect(t *turn, tg tag) Reply {
	if id, ok := tg.id(2); ok {
		if _, err := e.Items.Get(id); err != nil {
			return e.fail(t, "item.edit", err)
		}
		return Reply{Text: msgItemEditChoice, Buttons: [][]Button{
			row(btn("Name", tagf("item:edit:name:%d", id)), btn("Code", tagf("item:edit:custom_code:%d", id))),
			row(btn("Description", tagf("item:edit:description:%d", id)), btn("Count", tagf("item:edit:count:%d", id))),
			row(btn("Video", tagf("item:edit:video:%d", id)), btn("Add images", tagf("item:edit:image:%d", id))),
			backRow(tagf("item:view:%d", id)),
		}}
	}

	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	if tg.at(2) == "image_done" {
		if cur, _ := t.p.Int(keyItemID); cur != id {
			return stale()
		}
		return e.itemImagesDone(t, stItemEditImages)
	}
	st, known := editSteps[tg.at(2)]
	if !known {
		return stale()
	}
	if _, err := e.Items.Get(id); err != nil {
		return e.fail(t, "item.edit", err)
	}
	p := state.Payload{}
	p.SetInt(keyItemID, id)
	if err := e.set(t, st.step, p); err != nil {
		return e.fail(t, "item.edit", err)
	}
	if st.step == stItemEditImages {
		return reprompt(st.prompt, imagesDoneRow(tagf("item:edit:image_done:%d", id)))
	}
	return reprompt(st.prompt, cancelRow(tagf("item:view:%d", id)))
}

// itemEditText applies one field edit and ends the flow.
func (e *Engine) itemEditText(t *turn, s string) Reply {
	id, _ := t.p.Int(keyItemID)
	cancel := cancelRow(tagf("item:view:%d", id))
	var (
		it    domain.ItemDetail
		err   error
		field string
	)
	switch t.state {
	case stItemEditCount:
		n, ok := validate.Amount(s)
		if !ok {
			return reprompt(msgBadAmount, cancel)
		}
		field = "available_count"
		it, err = e.Items.SetCount(id, n)
	default:
		v, ok := validate.Text(s)
		if !ok {
			return reprompt(msgEmptyText, cancel)
		}
		switch t.state {
		case stItemEditName:
			field = "name"
			it, err = e.Items.Rename(id, v)
		case stItemEditCustomCode:
			field = "custom_code"
			it, err = e.Items.SetCustomCode(id, v)
		case stItemEditDescription:
			field = "description"
			it, err = e.Items.SetDescription(id, v)
		case stItemEditVideo:
			field = "video_url"
			it, err = e.Items.SetVideoURL(id, v)
		default:
			return stale()
		}
	}
	if err != nil {
		return e.editFailed(t, "item.update", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "item.update", map[string]any{"id": id, "field": field})
	n, _ := e.Items.ImageCount(id)
	return Reply{Text: msgRenamed + "\n\n" + itemText(it, n), Buttons: itemButtons(id)}
}

func (e *Engine) lowStock(t *turn) Reply {
	items, err := e.Inventory.LowStock()
	if err != nil {
		return e.fail(t, "lowstock", err)
	}
	if len(items) == 0 {
		return Reply{Text: msgLowStockEmpty, Buttons: [][]Button{backRow("menu:main")}}
	}
	var b strings.Builder
	b.WriteString(msgLowStockHeader)
	for _, it := range items {
		fmt.Fprintf(&b, "\n%s (%s): %s %s, threshold %s",
			it.Name, it.CustomCode, it.AvailableCount, it.MeasureTypeName, it.LowStockThreshold)
	}
	return Reply{Text: b.String(), Buttons: itemRows(items, "menu:main")}
}
