package process

// Category names the class of fab process a change requires
type Category string

const (
	CategoryDeposition  Category = "DEPOSITION"
	CategoryEtch        Category = "ETCH"
	CategoryLithography Category = "LITHOGRAPHY"
	CategoryUnknown     Category = "UNKNOWN"
)

// SubType refines a category by process character
type SubType string

const (
	SubTypeConformal   SubType = "CONFORMAL"   // follows topography, high AR fills
	SubTypePlanar      SubType = "PLANAR"      // blanket coverage
	SubTypeAnisotropic SubType = "ANISOTROPIC" // directional removal
	SubTypeIsotropic   SubType = "ISOTROPIC"   // uniform removal
	SubTypeNone        SubType = ""            // lithography and unknown carry no sub-type
)

// Wire names locked by the step output contract.
const (
	WireDeposition  = "Deposition"
	WireEtch        = "Etch"
	WireLithography = "Lithography"
)

// Valid reports whether the category is one of the defined values
func (c Category) Valid() bool {
	switch c {
	case CategoryDeposition, CategoryEtch, CategoryLithography, CategoryUnknown:
		return true
	}
	return false
}

// Plannable reports whether a step can be emitted for this category
func (c Category) Plannable() bool {
	return c == CategoryDeposition || c == CategoryEtch || c == CategoryLithography
}

// WireName returns the serialized process_type string for the category.
// Unknown categories have no wire name; they never reach output.
func (c Category) WireName() string {
	switch c {
	case CategoryDeposition:
		return WireDeposition
	case CategoryEtch:
		return WireEtch
	case CategoryLithography:
		return WireLithography
	}
	return ""
}

// CategoryFromWire maps a serialized process_type string back to a category
func CategoryFromWire(s string) Category {
	switch s {
	case WireDeposition:
		return CategoryDeposition
	case WireEtch:
		return CategoryEtch
	case WireLithography:
		return CategoryLithography
	}
	return CategoryUnknown
}

// Classification pairs a category with its sub-type
type Classification struct {
	Category Category `json:"category"`
	SubType  SubType  `json:"sub_type,omitempty"`
}

// IsUnknown reports whether no rule matched the descriptor
func (c Classification) IsUnknown() bool {
	return c.Category == CategoryUnknown
}
