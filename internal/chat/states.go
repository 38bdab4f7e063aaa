package chat

import "warehousebot/internal/state"

// Steps of every multi-step flow. Each constant is one "waiting for X".
const (
	stCategoryName     state.Name = "category.create.name"
	stCategoryEditName state.Name = "category.edit.name"

	stSubcategoryCategory state.Name = "subcategory.create.category"
	stSubcategoryName     state.Name = "subcategory.create.name"
	stSubcategoryEditName state.Name = "subcategory.edit.name"

	stBrandName     state.Name = "brand.create.name"
	stBrandEditName state.Name = "brand.edit.name"

	stMeasureName          state.Name = "measure.create.name"
	stMeasureThreshold     state.Name = "measure.create.threshold"
	stMeasureEditName      state.Name = "measure.edit.name"
	stMeasureEditThreshold state.Name = "measure.edit.threshold"

	stItemCategory    state.Name = "item.create.category"
	stItemSubcategory state.Name = "item.create.subcategory"
	stItemBrand       state.Name = "item.create.brand"
	stItemMeasure     state.Name = "item.create.measure"
	stItemName        state.Name = "item.create.name"
	stItemCustomCode  state.Name = "item.create.custom_code"
	stItemDescription state.Name = "item.create.description"
	stItemCount       state.Name = "item.create.count"
	stItemVideo       state.Name = "item.create.video"
	stItemImages      state.Name = "item.create.images"

	stItemSearch state.Name = "item.search"

	stItemEditName        state.Name = "item.edit.name"
	stItemEditCustomCode  state.Name = "item.edit.custom_code"
	stItemEditDescription state.Name = "item.edit.description"
	stItemEditCount       state.Name = "item.edit.count"
	stItemEditVideo       state.Name = "item.edit.video"
	stItemEditImages      state.Name = "item.edit.images"
)

// Payload keys.
const (
	keyID            = "id"
	keyCategoryID    = "category_id"
	keySubcategoryID = "subcategory_id"
	keyBrandID       = "brand_id"
	keyMeasureTypeID = "measure_type_id"
	keyName          = "name"
	keyCustomCode    = "custom_code"
	keyDescription   = "description"
	keyCount         = "available_count"
	keyItemID        = "item_id"
	keyImages        = "images"
)
