package wizard

// Command names understood by the engine. The transport adapter maps
// slash commands and admin-panel buttons onto these.
const (
	CmdStart         = "start"
	CmdAdminPanel    = "admin"
	CmdAddProduct    = "add_product"
	CmdEditProduct   = "edit_product"
	CmdDeleteProduct = "delete_product"
	CmdDeleteVariant = "delete_variant"
	CmdAssignRoles   = "roles"
	CmdCancel        = "cancel"
)

// Admin-panel button labels. Defined here so the engine and the
// transport adapter agree on them.
const (
	BtnAddProduct    = "➕ Add product"
	BtnEditProduct   = "✏️ Edit product"
	BtnDeleteProduct = "🗑 Delete product"
	BtnDeleteVariant = "🗑 Delete variant"
	BtnAssignRoles   = "👥 Manage roles"
	BtnBack          = "⬅️ Back"

	BtnYes = "✅ Yes"
	BtnNo  = "❌ No"

	BtnAssignAdmin   = "👑 Assign admin"
	BtnAssignCourier = "🚚 Assign courier"

	BtnFieldName        = "Name"
	BtnFieldDescription = "Description"
	BtnFieldPhoto       = "Photo"
	BtnFieldVariant     = "Variant"
)

// CommandForButton resolves an admin-panel button press to a command.
// Only panel buttons are commands; Yes/No and similar labels are
// in-session inputs and stay untranslated.
func CommandForButton(label string) (string, bool) {
	switch label {
	case BtnAddProduct:
		return CmdAddProduct, true
	case BtnEditProduct:
		return CmdEditProduct, true
	case BtnDeleteProduct:
		return CmdDeleteProduct, true
	case BtnDeleteVariant:
		return CmdDeleteVariant, true
	case BtnAssignRoles:
		return CmdAssignRoles, true
	case BtnBack:
		return CmdCancel, true
	default:
		return "", false
	}
}

const (
	msgWelcome      = "Welcome!"
	msgAccessDenied = "🚫 You do not have access to the admin panel."
	msgCancelled    = "Cancelled."
	msgPanel        = "🔐 Admin panel:"

	msgPromptName        = "Product name:"
	msgPromptDescription = "Description:"
	msgPromptPhoto       = "📸 Send a product photo, or \"none\":"
	msgPromptVarType     = "Variant type (size, flavor, ...):"
	msgPromptVarPrice    = "Price:"
	msgPromptVarPhoto    = "📸 Send a variant photo, or \"none\":"
	msgPromptAddMore     = "Add another variant?"
	msgPromptField       = "What do you want to change?"
	msgPromptNewName     = "New name:"
	msgPromptNewDesc     = "New description:"
	msgPromptNewPhoto    = "📸 Send a new photo, or \"none\":"
	msgPromptRoleKind    = "Choose a role to assign:"
	msgPromptIdentity    = "Send the user's numeric id:"

	msgBadPhotoStep   = "Send a photo or the word \"none\"."
	msgBadPrice       = "❌ Price must be a positive number."
	msgBadIdentity    = "❌ The id must be a number (for example, 123456789)."
	msgPhotoNotHere   = "A photo is not expected here."
	msgPickFromList   = "Pick an option from the list."
	msgTargetMissing  = "❌ That product no longer exists."
	msgVariantMissing = "❌ That variant no longer exists."
	msgConflict       = "⚠️ The catalog was changed by someone else. Please try again."
	msgStoreDown      = "⚠️ Storage is temporarily unavailable. Please try again."

	msgProductAdded   = "✅ Product added."
	msgProductUpdated = "✅ Product updated."
	msgProductDeleted = "✅ Product deleted."
	msgVariantDeleted = "✅ Variant deleted."
	msgRoleAssigned   = "✅ Role assigned."
)
