package domain

import "fmt"

// CollectionType identifies an independently ordered group of rows owned by a creator.
type CollectionType string

const (
	CollectionSocialLinks    CollectionType = "social_links"
	CollectionPaymentMethods CollectionType = "payment_methods"
	CollectionQRCodes        CollectionType = "qr_codes"
)

// CollectionTypes lists every reorderable collection.
var CollectionTypes = []CollectionType{
	CollectionSocialLinks,
	CollectionPaymentMethods,
	CollectionQRCodes,
}

// ParseCollectionType converts a wire tag into a CollectionType.
func ParseCollectionType(s string) (CollectionType, error) {
	c := CollectionType(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection type %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known tags.
func (c CollectionType) Valid() bool {
	switch c {
	case CollectionSocialLinks, CollectionPaymentMethods, CollectionQRCodes:
		return true
	}
	return false
}

// CascadesToQR reports whether QR codes linked to items of this collection
// follow their position.
func (c CollectionType) CascadesToQR() bool {
	return c == CollectionSocialLinks || c == CollectionPaymentMethods
}

func (c CollectionType) String() string {
	return string(c)
}
