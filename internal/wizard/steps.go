package wizard

// Step is a position in one of the wizard scripts. Every script is a
// fixed linear sequence (the add-product script loops over its variant
// steps); an unhandled step is a compile-time gap in the transition
// switch, not a silently-ignored string.
type Step int

const (
	StepNone Step = iota

	// Add-Product script
	StepAddCatalog
	StepAddName
	StepAddDescription
	StepAddPhoto
	StepAddVariantType
	StepAddVariantPrice
	StepAddVariantPhoto
	StepAddMore

	// Edit-Product script
	StepEditCatalog
	StepEditProduct
	StepEditField
	StepEditName
	StepEditDescription
	StepEditPhoto
	StepEditVariantType
	StepEditVariantPrice
	StepEditVariantPhoto

	// Delete-Product script
	StepDeleteProductCatalog
	StepDeleteProductTarget
	StepDeleteProductConfirm

	// Delete-Variant script
	StepDeleteVariantCatalog
	StepDeleteVariantProduct
	StepDeleteVariantTarget
	StepDeleteVariantConfirm

	// Role-assignment script
	StepRoleKind
	StepRoleIdentity
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepAddCatalog:
		return "add_catalog"
	case StepAddName:
		return "add_name"
	case StepAddDescription:
		return "add_description"
	case StepAddPhoto:
		return "add_photo"
	case StepAddVariantType:
		return "add_variant_type"
	case StepAddVariantPrice:
		return "add_variant_price"
	case StepAddVariantPhoto:
		return "add_variant_photo"
	case StepAddMore:
		return "add_more"
	case StepEditCatalog:
		return "edit_catalog"
	case StepEditProduct:
		return "edit_product"
	case StepEditField:
		return "edit_field"
	case StepEditName:
		return "edit_name"
	case StepEditDescription:
		return "edit_description"
	case StepEditPhoto:
		return "edit_photo"
	case StepEditVariantType:
		return "edit_variant_type"
	case StepEditVariantPrice:
		return "edit_variant_price"
	case StepEditVariantPhoto:
		return "edit_variant_photo"
	case StepDeleteProductCatalog:
		return "delete_product_catalog"
	case StepDeleteProductTarget:
		return "delete_product_target"
	case StepDeleteProductConfirm:
		return "delete_product_confirm"
	case StepDeleteVariantCatalog:
		return "delete_variant_catalog"
	case StepDeleteVariantProduct:
		return "delete_variant_product"
	case StepDeleteVariantTarget:
		return "delete_variant_target"
	case StepDeleteVariantConfirm:
		return "delete_variant_confirm"
	case StepRoleKind:
		return "role_kind"
	case StepRoleIdentity:
		return "role_identity"
	default:
		return "unknown"
	}
}

// ownerOnly reports whether the step belongs to the role-assignment
// script, which is gated on owner access instead of admin access
func (s Step) ownerOnly() bool {
	return s == StepRoleKind || s == StepRoleIdentity
}
