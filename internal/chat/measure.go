package chat

import (
	"fmt"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/state"
	"warehousebot/internal/validate"
)

func measureMenu() Reply {
	return Reply{Text: msgMeasureMenu, Buttons: [][]Button{
		row(btn("New measure type", "measure:create"), btn("All measure types", "measure:list")),
		backRow("menu:settings"),
	}}
}

func (e *Engine) measureSelect(t *turn, tg tag) Reply {
	switch tg.at(1) {
	case "menu":
		return measureMenu()
	case "create":
		if err := e.set(t, stMeasureName, state.Payload{}); err != nil {
			return e.fail(t, "measure.create", err)
		}
		return reprompt(msgAskMeasureName, cancelRow("measure:menu"))
	case "list":
		ms, err := e.Catalog.ListMeasureTypes()
		if err != nil {
			return e.fail(t, "measure.list", err)
		}
		text := msgMeasureMenu
		if len(ms) == 0 {
			text = msgNothingToList
		}
		return Reply{Text: text, Buttons: listRows(ms,
			func(m domain.MeasureType) string { return fmt.Sprintf("%s (low at %s)", m.Name, m.LowStockThreshold) },
			func(m domain.MeasureType) string { return tagf("measure:view:%d", m.ID) },
			"measure:menu")}
	}

	id, ok := tg.id(2)
	if !ok {
		return stale()
	}
	m, err := e.Catalog.GetMeasureType(id)
	if err != nil {
		return e.fail(t, "measure.get", err)
	}
	back := tagf("measure:view:%d", id)
	switch tg.at(1) {
	case "view":
		return Reply{
			Text: fmt.Sprintf("%s (%s)\nLow-stock threshold: %s\nCreated: %s", m.Name, m.Code, m.LowStockThreshold, m.CreatedAt),
			Buttons: [][]Button{
				row(btn("Edit", tagf("measure:edit:%d", id)), btn("Delete", tagf("measure:delete_confirm:%d", id))),
				backRow("measure:list"),
			},
		}
	case "edit":
		return Reply{Text: msgMeasureEditChoice, Buttons: [][]Button{
			row(btn("Name", tagf("measure:edit_name:%d", id)), btn("Threshold", tagf("measure:edit_threshold:%d", id))),
			backRow(back),
		}}
	case "edit_name", "edit_threshold":
		next, prompt := stMeasureEditName, msgAskMeasureEdit
		if tg.at(1) == "edit_threshold" {
			next, prompt = stMeasureEditThreshold, msgAskThresholdEdit
		}
		p := state.Payload{}
		p.SetInt(keyID, id)
		if err := e.set(t, next, p); err != nil {
			return e.fail(t, "measure.edit", err)
		}
		return reprompt(prompt, cancelRow(back))
	case "delete_confirm":
		return Reply{Text: m.Name + "\n" + msgConfirmMsrDel, Buttons: [][]Button{
			row(btn("Yes, delete", tagf("measure:delete:%d", id)), btn("No", back)),
		}}
	case "delete":
		if err := e.Catalog.DeleteMeasureType(id); err != nil {
			return e.fail(t, "measure.delete", err)
		}
		applog.ActorAudit(t.actor, "measure.delete", map[string]any{"id": id, "code": m.Code})
		r := measureMenu()
		r.Text = msgDeleted
		return r
	}
	return stale()
}

func (e *Engine) measureName(t *turn, s string) Reply {
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow("measure:menu"))
	}
	p := t.p.Clone()
	p.SetStr(keyName, name)
	if err := e.set(t, stMeasureThreshold, p); err != nil {
		return e.fail(t, "measure.create", err)
	}
	return reprompt(msgAskThreshold, cancelRow("measure:menu"))
}

func (e *Engine) measureThreshold(t *turn, s string) Reply {
	th, ok := validate.Amount(s)
	if !ok {
		return reprompt(msgBadAmount, cancelRow("measure:menu"))
	}
	m, err := e.Catalog.CreateMeasureType(t.p.Str(keyName), th)
	if err != nil {
		return e.fail(t, "measure.create", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "measure.create", map[string]any{"id": m.ID, "code": m.Code})
	r := measureMenu()
	r.Text = fmt.Sprintf("Measure type %q created (%s), low at %s.", m.Name, m.Code, m.LowStockThreshold)
	return r
}

func (e *Engine) measureEditName(t *turn, s string) Reply {
	id, _ := t.p.Int(keyID)
	name, ok := validate.Text(s)
	if !ok {
		return reprompt(msgEmptyText, cancelRow(tagf("measure:view:%d", id)))
	}
	if err := e.Catalog.RenameMeasureType(id, name); err != nil {
		return e.editFailed(t, "measure.rename", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "measure.rename", map[string]any{"id": id})
	return Reply{Text: msgRenamed, Buttons: [][]Button{backRow(tagf("measure:view:%d", id))}}
}

func (e *Engine) measureEditThreshold(t *turn, s string) Reply {
	id, _ := t.p.Int(keyID)
	th, ok := validate.Amount(s)
	if !ok {
		return reprompt(msgBadAmount, cancelRow(tagf("measure:view:%d", id)))
	}
	if err := e.Catalog.SetThreshold(id, th); err != nil {
		return e.editFailed(t, "measure.threshold", err)
	}
	if err := e.clear(t); err != nil {
		return e.fail(t, "state.clear", err)
	}
	applog.ActorAudit(t.actor, "measure.threshold", map[string]any{"id": id, "threshold": th.String()})
	return Reply{Text: msgRenamed, Buttons: [][]Button{backRow(tagf("measure:view:%d", id))}}
}
