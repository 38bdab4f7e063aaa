package chat

// Texts shown to the actor.
const (
	msgAskPassword   = "Welcome to the warehouse bot. Send the operator password to continue."
	msgBadPassword   = "Wrong password. Try again."
	msgLoggedIn      = "Logged in."
	msgLoggedOut     = "Logged out."
	msgLoginFirst    = "You are not logged in. Send /start and then the password."
	msgMainMenu      = "Main menu"
	msgSettingsMenu  = "Settings"
	msgUseMenu       = "Please use the menu buttons."
	msgStale         = "That button is no longer active. Please use the menu."
	msgNotFound      = "Not found. It may have been deleted."
	msgFailure       = "Something went wrong. Please try again."
	msgCancelled     = "Cancelled."
	msgEmptyText     = "This field cannot be empty. Please send it again."
	msgBadAmount     = "Please send a number from 0 up to 12 digits, with at most 6 decimals."
	msgDeleted       = "Deleted."
	msgRenamed       = "Saved."
	msgNothingToList = "Nothing here yet."

	msgCategoryMenu    = "Categories"
	msgAskCategoryName = "Send the name of the new category."
	msgAskCategoryEdit = "Send the new name for the category."
	msgConfirmCatDel   = "Delete this category? All its subcategories and their items will be deleted too."

	msgSubcategoryMenu    = "Subcategories"
	msgPickSubParent      = "Choose the category for the new subcategory."
	msgAskSubcategoryName = "Send the name of the new subcategory."
	msgAskSubcategoryEdit = "Send the new name for the subcategory."
	msgConfirmSubDel      = "Delete this subcategory? All its items will be deleted too."
	msgNeedCategory       = "Create a category first."

	msgBrandMenu    = "Brands"
	msgAskBrandName = "Send the name of the new brand."
	msgAskBrandEdit = "Send the new name for the brand."
	msgConfirmBrDel = "Delete this brand? All items of this brand will be deleted too."

	msgMeasureMenu       = "Measure types"
	msgAskMeasureName    = "Send the name of the new measure type (for example pcs, m, kg)."
	msgAskThreshold      = "Send the low-stock threshold for this measure type."
	msgAskMeasureEdit    = "Send the new name for the measure type."
	msgAskThresholdEdit  = "Send the new low-stock threshold."
	msgMeasureEditChoice = "What do you want to change?"
	msgConfirmMsrDel     = "Delete this measure type? All items using it will be deleted too."

	msgItemMenu         = "Items"
	msgPickCategory     = "Choose a category."
	msgPickSubcategory  = "Choose a subcategory."
	msgPickBrand        = "Choose a brand."
	msgPickMeasure      = "Choose a measure type."
	msgNoSubcategories  = "This category has no subcategories. Choose another category or create one."
	msgNeedBrand        = "Create a brand first."
	msgNeedMeasure      = "Create a measure type first."
	msgAskItemName      = "Send the item name."
	msgAskCustomCode    = "Send the item's own code."
	msgAskDescription   = "Send a description, or skip."
	msgAskCount         = "Send the available count, or skip for 0."
	msgAskVideo         = "Send a video link, or skip."
	msgCreateFailed     = "Could not save the item. Your answers are kept; send the video link again or skip to retry."
	msgAskImages        = "Send images of the item one by one. Press Done when finished."
	msgImageSaved       = "Image saved. Send another or press Done."
	msgImagesDone       = "Finished."
	msgAskSearch        = "Send a name, code or part of a description to search for."
	msgNoResults        = "No items found."
	msgConfirmItemDel   = "Delete this item and all its images?"
	msgItemEditChoice   = "What do you want to change?"
	msgAskItemEditName  = "Send the new name."
	msgAskItemEditCode  = "Send the new code."
	msgAskItemEditDesc  = "Send the new description."
	msgAskItemEditCount = "Send the new available count."
	msgAskItemEditVideo = "Send the new video link."
	msgNoImages         = "This item has no images."
	msgImageDeleted     = "Image deleted."
	msgLowStockEmpty    = "No items are low on stock."
	msgLowStockHeader   = "Low stock items:"
)
