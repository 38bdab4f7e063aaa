package chat

import (
	"errors"
	"fmt"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

// Item creation runs category, subcategory, brand and measure type as
// selections, then name, own code, description, count and video as text.
// Description, count and video can be skipped. The video step is terminal:
// the item is inserted and the flow moves on to collecting images until Done.

func pickCategory(cats []domain.Category) Reply {
	return Reply{Text: msgPickCategory, Buttons: pickRows(cats,
		func(c domain.Category) string { return c.Name },
		func(c domain.Category) string { return tagf("item:create:cat:%d", c.ID) })}
}

func pickSubcategory(subs []domain.Subcategory) Reply {
	return Reply{Text: msgPickSubcategory, Buttons: pickRows(subs,
		func(s domain.Subcategory) string { return s.Name },
		func(s domain.Subcategory) string { return tagf("item:create:sub:%d", s.ID) })}
}

func pickBrand(brands []domain.Brand) Reply {
	return Reply{Text: msgPickBrand, Buttons: pickRows(brands,
		func(b domain.Brand) string { return b.Name },
		func(b domain.Brand) string { return tagf("item:create:brand:%d", b.ID) })}
}

func pickMeasure(ms []domain.MeasureType) Reply {
	return Reply{Text: msgPickMeasure, Buttons: pickRows(ms,
		func(m domain.MeasureType) string { return m.Name },
		func(m domain.MeasureType) string { return tagf("item:create:measure:%d", m.ID) })}
}

// pickRows lists the choices of one creation step, ending with Cancel.
func pickRows[T any](xs []T, label func(T) string, tagOf func(T) string) [][]Button {
	rows := make([][]Button, 0, len(xs)+1)
	for _, x := range xs {
		rows = append(rows, row(btn(label(x), tagOf(x))))
	}
	return append(rows, cancelRow("item:menu"))
}

func skipRow(field string) []Button {
	return row(btn("Skip", "item:create:skip:"+field), btn("Cancel", "cancel:item:menu"))
}

func imagesDoneRow(doneTag string) []Button { return row(btn("Done", doneTag)) }

func (e *Engine) itemCreateSelect(t *turn, tg tag) Reply {
	switch tg.at(2) {
	case "":
		return e.itemCreateStart(t)
	case "cat":
		return e.itemPickCategory(t, tg)
	case "sub":
		return e.itemPickSubcategory(t, tg)
	case "brand":
		return e.itemPickBrand(t, tg)
	case "measure":
		return e.itemPickMeasure(t, tg)
	case "skip":
		return e.itemSkip(t, tg.at(3))
	case "done":
		return e.itemImagesDone(t, stItemImages)
	}
	return stale()
}

// itemCreateStart begins a new flow, replacing whatever flow the actor had.
func (e *Engine) itemCreateStart(t *turn) Reply {
	cats, err := e.Catalog.ListCategories()
	if err != nil {
		return e.fail(t, "item.create", err)
	}
	if len(cats) == 0 {
		r := itemMenu()
		r.Text = msgNeedCategory
		return r
	}
	if err := e.set(t, stItemCategory, state.Payload{}); err != nil {
		return e.fail(t, "item.create", err)
	}
	return pickCategory(cats)
}

// reselect answers a selection whose target no longer exists by showing the
// same choices again. State is left as it was.
func (e *Engine) reselect(t *turn, action string, err error, again func() (Reply, error)) Reply {
	if !errors.Is(err, domain.ErrNotFound) {
		return e.fail(t, action, err)
	}
	r, lerr := again()
	if lerr != nil {
		return e.fail(t, action, lerr)
	}
	r.Text = msgNotFound + "\n" + r.Text
	return r
}

func (e *Engine) categoryChoices() (Reply, error) {
	cats, err := e.Catalog.ListCategories()
	return pickCategory(cats), err
}

func (e *Engine) subcategoryChoices(categoryID int64) func() (Reply, error) {
	return func() (Reply, error) {
		subs, err := e.Catalog.SubcategoriesOf(categoryID)
		return pickSubcategory(subs), err
	}
}

func (e *Engine) brandChoices() (Reply, error) {
	brands, err := e.Catalog.ListBrands()
	return pickBrand(brands), err
}

func (e *Engine) measureChoices() (Reply, error) {
	ms, err := e.Catalog.ListMeasureTypes()
	return pickMeasure(ms), err
}

func (e *Engine) itemPickCategory(t *turn, tg tag) Reply {
	if t.state != stItemCategory {
		return stale()
	}
	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	if _, err := e.Catalog.GetCategory(id); err != nil {
		return e.reselect(t, "item.create.category", err, e.categoryChoices)
	}
	subs, err := e.Catalog.SubcategoriesOf(id)
	if err != nil {
		return e.fail(t, "item.create.category", err)
	}
	if len(subs) == 0 {
		r, err := e.categoryChoices()
		if err != nil {
			return e.fail(t, "item.create.category", err)
		}
		r.Text = msgNoSubcategories
		return r
	}
	p := t.p.Clone()
	p.SetInt(keyCategoryID, id)
	if err := e.set(t, stItemSubcategory, p); err != nil {
		return e.fail(t, "item.create.category", err)
	}
	return pickSubcategory(subs)
}

func (e *Engine) itemPickSubcategory(t *turn, tg tag) Reply {
	if t.state != stItemSubcategory {
		return stale()
	}
	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	catID, _ := t.p.Int(keyCategoryID)
	sub, err := e.Catalog.GetSubcategory(id)
	if err == nil && sub.CategoryID != catID {
		err = fmt.Errorf("subcategory %d under category %d: %w", id, catID, domain.ErrNotFound)
	}
	if err != nil {
		return e.reselect(t, "item.create.subcategory", err, e.subcategoryChoices(catID))
	}
	brands, err := e.Catalog.ListBrands()
	if err != nil {
		return e.fail(t, "item.create.subcategory", err)
	}
	if len(brands) == 0 {
		return reprompt(msgNeedBrand, cancelRow("item:menu"))
	}
	p := t.p.Clone()
	p.SetInt(keySubcategoryID, id)
	if err := e.set(t, stItemBrand, p); err != nil {
		return e.fail(t, "item.create.subcategory", err)
	}
	return pickBrand(brands)
}

func (e *Engine) itemPickBrand(t *turn, tg tag) Reply {
	if t.state != stItemBrand {
		return stale()
	}
	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	if _, err := e.Catalog.GetBrand(id); err != nil {
		return e.reselect(t, "item.create.brand", err, e.brandChoices)
	}
	ms, err := e.Catalog.ListMeasureTypes()
	if err != nil {
		return e.fail(t, "item.create.brand", err)
	}
	if len(ms) == 0 {
		return reprompt(msgNeedMeasure, cancelRow("item:menu"))
	}
	p := t.p.Clone()
	p.SetInt(keyBrandID, id)
	if err := e.set(t, stItemMeasure, p); err != nil {
		return e.fail(t, "item.create.brand", err)
	}
	return pickMeasure(ms)
}

func (e *Engine) itemPickMeasure(t *turn, tg tag) Reply {
	if t.state != stItemMeasure {
		return stale()
	}
	id, ok := tg.id(3)
	if !ok {
		return stale()
	}
	if _, err := e.Catalog.GetMeasureType(id); err != nil {
		return e.reselect(t, "item.create.measure", err, e.measureChoices)
	}
	p := t.p.Clone()
	p.SetInt(keyMeasureTypeID, id)
	if err := e.set(t, stItemName, p); err != nil {
		return e.fail(t, "item.create.measure", err)
	}
	return reprompt(msgAskItemName, cancelRow("item:menu"))
}

func (e *Engine) itemCreateText(t *turn, s string) Reply {
	switch t.state {
	case stItemName, stItemCustomCode:
		v, ok := validate.Text(s)
		if !ok {
			return reprompt(msgEmptyText, cancelRow("item:menu"))
		}
		p := t.p.Clone()
		if t.state == stItemName {
			p.SetStr(keyName, v)
			if err := e.set(t, stItemCustomCode, p); err != nil {
				return e.fail(t, "item.create.name", err)
			}
			return reprompt(msgAskCustomCode, cancelRow("item:menu"))
		}
		p.SetStr(keyCustomCode, v)
		if err := e.set(t, stItemDescription, p); err != nil {
			return e.fail(t, "item.create.custom_code", err)
		}
		return reprompt(msgAskDescription, skipRow("description"))
	case stItemDescription:
		v, ok := validate.Text(s)
		if !ok {
			return reprompt(msgEmptyText, skipRow("description"))
		}
		return e.itemDescription(t, v)
	case stItemCount:
		n, ok := validate.Amount(s)
		if !ok {
			return reprompt(msgBadAmount, skipRow("count"))
		}
		p := t.p.Clone()
		p.SetDecimal(keyCount, n)
		if err := e.set(t, stItemVideo, p); err != nil {
			return e.fail(t, "item.create.count", err)
		}
		return reprompt(msgAskVideo, skipRow("video"))
	case stItemVideo:
		v, ok := validate.Text(s)
		if !ok {
			return reprompt(msgEmptyText, skipRow("video"))
		}
		return e.itemFinish(t, v)
	}
	return stale()
}

func (e *Engine) itemDescription(t *turn, desc string) Reply {
	p := t.p.Clone()
	p.SetStr(keyDescription, desc)
	if err := e.set(t, stItemCount, p); err != nil {
		return e.fail(t, "item.create.description", err)
	}
	return reprompt(msgAskCount, skipRow("count"))
}

// itemSkip takes the default for an optional field: empty text or zero.
func (e *Engine) itemSkip(t *turn, field string) Reply {
	switch {
	case field == "description" && t.state == stItemDescription:
		return e.itemDescription(t, "")
	case field == "count" && t.state == stItemCount:
		p := t.p.Clone()
		p.SetStr(keyCount, "0")
		if err := e.set(t, stItemVideo, p); err != nil {
			return e.fail(t, "item.create.count", err)
		}
		return reprompt(msgAskVideo, skipRow("video"))
	case field == "video" && t.state == stItemVideo:
		return e.itemFinish(t, "")
	}
	return stale()
}

func draftFrom(p state.Payload) (domain.ItemDraft, error) {
	d := domain.ItemDraft{
		Name:        p.Str(keyName),
		CustomCode:  p.Str(keyCustomCode),
		Description: p.Str(keyDescription),
	}
	var ok [4]bool
	d.CategoryID, ok[0] = p.Int(keyCategoryID)
	d.SubcategoryID, ok[1] = p.Int(keySubcategoryID)
	d.BrandID, ok[2] = p.Int(keyBrandID)
	d.MeasureTypeID, ok[3] = p.Int(keyMeasureTypeID)
	for _, v := range ok {
		if !v {
			return d, fmt.Errorf("%w: incomplete item payload", domain.ErrValidation)
		}
	}
	if n, has := p.Decimal(keyCount); has {
		d.AvailableCount = n
	}
	return d, nil
}

// itemFinish inserts the item. Until the insert succeeds the stored step and
// payload stay exactly as they were, so the actor can retry.
func (e *Engine) itemFinish(t *turn, video string) Reply {
	d, err := draftFrom(t.p)
	if err == nil {
		d.VideoURL = video
		var it domain.ItemDetail
		it, err = e.Items.Create(d)
		if err == nil {
			return e.itemCreated(t, it)
		}
	}
	if errors.Is(err, domain.ErrNotFound) {
		return reprompt(msgNotFound+"\n"+msgCreateFailed, skipRow("video"))
	}
	applog.ActorError(t.actor, "item.create.fail", err, map[string]any{"state": string(t.state)})
	return reprompt(msgCreateFailed, skipRow("video"))
}

func (e *Engine) itemCreated(t *turn, it domain.ItemDetail) Reply {
	applog.ActorAudit(t.actor, "item.create", map[string]any{"id": it.ID, "code": it.Code})
	p := state.Payload{}
	p.SetInt(keyItemID, it.ID)
	if err := e.set(t, stItemImages, p); err != nil {
		// The item exists; only the image step is lost.
		applog.ActorError(t.actor, "state.set.fail", err, map[string]any{"item_id": it.ID})
		return Reply{Text: itemText(it, 0), Buttons: itemButtons(it.ID)}
	}
	return Reply{
		Text:    itemText(it, 0) + "\n\n" + msgAskImages,
		Buttons: [][]Button{imagesDoneRow("item:create:done")},
	}
}

// addImage stores one attachment and re-enters the same step.
func (e *Engine) addImage(t *turn, ev Event) Reply {
	itemID, _ := t.p.Int(keyItemID)
	done := "item:create:done"
	if t.state == stItemEditImages {
		done = tagf("item:edit:image_done:%d", itemID)
	}
	if ev.File == nil {
		return reprompt(msgAskImages, imagesDoneRow(done))
	}
	img, err := e.Items.AddImage(itemID, ev.File, ev.Ext)
	if err != nil {
		return e.editFailed(t, "item.image.add", err)
	}
	p := t.p.Clone()
	n, _ := p.Int(keyImages)
	p.SetInt(keyImages, n+1)
	if err := e.set(t, t.state, p); err != nil {
		return e.fail(t, "item.image.add", err)
	}
	applog.ActorAudit(t.actor, "item.image.add", map[string]any{"item_id": itemID, "image_id": img.ID})
	return Reply{Text: fmt.Sprintf("%s (%d)", msgImageSaved, n+1), Buttons: [][]Button{imagesDoneRow(done)}}
}

// itemImagesDone ends an image-collecting step and shows the item.
func (e *Engine) itemImagesDone(t *turn, want state.Name) Reply {
	if t.state != want {
		return stale()
	}
	itemID, _ := t.p.Int(keyItemID)
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	r := e.itemView(t, itemID)
	r.Text = msgImagesDone + "\n\n" + r.Text
	return r
}
