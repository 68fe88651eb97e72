package domain

// Payload is the collection-specific part of an OrderedItem.
// Implementations: SocialLink, PaymentMethod, QRCode.
type Payload interface {
	Collection() CollectionType
	isPayload()
}

// SocialLink is a profile link to an external platform.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Label    string `json:"label,omitempty"`
}

// PaymentMethod is a way to tip or pay the creator.
type PaymentMethod struct {
	Provider string `json:"provider"` // e.g. "paypal", "venmo", "cashapp"
	Handle   string `json:"handle,omitempty"`
	URL      string `json:"url,omitempty"`
	Label    string `json:"label,omitempty"`
}

// QRCode points at a URL and may be linked to a social link or payment method.
type QRCode struct {
	Label                 string `json:"label,omitempty"`
	TargetURL             string `json:"target_url"`
	LinkedSocialLinkID    string `json:"linked_social_link_id,omitempty"`
	LinkedPaymentMethodID string `json:"linked_payment_method_id,omitempty"`
}

func (SocialLink) Collection() CollectionType    { return CollectionSocialLinks }
func (PaymentMethod) Collection() CollectionType { return CollectionPaymentMethods }
func (QRCode) Collection() CollectionType        { return CollectionQRCodes }

func (SocialLink) isPayload()    {}
func (PaymentMethod) isPayload() {}
func (QRCode) isPayload()        {}

// LinkedID returns the id of the item this QR code follows, if any.
func (q QRCode) LinkedID() string {
	if q.LinkedSocialLinkID != "" {
		return q.LinkedSocialLinkID
	}
	return q.LinkedPaymentMethodID
}
