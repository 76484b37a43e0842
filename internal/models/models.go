package models

// Role governs admin-panel access and order notification eligibility
type Role string

const (
	RoleNone    Role = ""
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleCourier Role = "courier"
)

// Valid reports whether r is one of the assignable roles
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleCourier
}

// Catalog is one of a small fixed set of named product lists,
// persisted as a single document per catalog number
type Catalog struct {
	Name  string    `json:"name"`
	Items []Product `json:"items"`
}

// Product belongs to exactly one catalog
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Image         string    `json:"image,omitempty"`
	Subcategories []Variant `json:"subcategories"`
}

// Variant is a priced sub-option of a product (size, flavor, etc.).
// Image is optional and stays empty when the operator skips it.
type Variant struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// FindItem returns the product with the given id, or nil. Lookup is
// always by generated id, never by display name, so two products
// sharing a name stay unambiguous.
func (c *Catalog) FindItem(id string) *Product {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem deletes the product with the given id preserving the
// order of the remaining items. Returns false if no such product exists.
func (c *Catalog) RemoveItem(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// OrderItem is a single cart line submitted by the storefront
type OrderItem struct {
	Name    string  `json:"name"`
	Variant string  `json:"variant"`
	Price   float64 `json:"price"`
}
