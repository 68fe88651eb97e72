package postgres

import (
	"database/sql"
	"fmt"

	"github.com/vietddude/linkpay/internal/core/domain"
)

// tableFor maps a collection to its table.
var tableFor = map[domain.CollectionType]string{
	domain.CollectionSocialLinks:    "social_links",
	domain.CollectionPaymentMethods: "payment_methods",
	domain.CollectionQRCodes:        "qr_codes",
}

// qrLinkColumn is the qr_codes column referencing rows of a cascading collection.
var qrLinkColumn = map[domain.CollectionType]string{
	domain.CollectionSocialLinks:    "linked_social_link_id",
	domain.CollectionPaymentMethods: "linked_payment_method_id",
}

type itemRow interface {
	toItem() domain.OrderedItem
}

type socialLinkRow struct {
	ID       string `db:"id"`
	OwnerID  string `db:"owner_id"`
	Position int    `db:"position"`
	Platform string `db:"platform"`
	URL      string `db:"url"`
	Label    string `db:"label"`
}

func (r socialLinkRow) toItem() domain.OrderedItem {
	return domain.OrderedItem{
		ID:       r.ID,
		Position: r.Position,
		Payload:  domain.SocialLink{Platform: r.Platform, URL: r.URL, Label: r.Label},
	}
}

type paymentMethodRow struct {
	ID       string `db:"id"`
	OwnerID  string `db:"owner_id"`
	Position int    `db:"position"`
	Provider string `db:"provider"`
	Handle   string `db:"handle"`
	URL      string `db:"url"`
	Label    string `db:"label"`
}

func (r paymentMethodRow) toItem() domain.OrderedItem {
	return domain.OrderedItem{
		ID:       r.ID,
		Position: r.Position,
		Payload:  domain.PaymentMethod{Provider: r.Provider, Handle: r.Handle, URL: r.URL, Label: r.Label},
	}
}

type qrCodeRow struct {
	ID                    string         `db:"id"`
	OwnerID               string         `db:"owner_id"`
	Position              int            `db:"position"`
	Label                 string         `db:"label"`
	TargetURL             string         `db:"target_url"`
	LinkedSocialLinkID    sql.NullString `db:"linked_social_link_id"`
	LinkedPaymentMethodID sql.NullString `db:"linked_payment_method_id"`
}

func (r qrCodeRow) toItem() domain.OrderedItem {
	return domain.OrderedItem{
		ID:       r.ID,
		Position: r.Position,
		Payload: domain.QRCode{
			Label:                 r.Label,
			TargetURL:             r.TargetURL,
			LinkedSocialLinkID:    r.LinkedSocialLinkID.String,
			LinkedPaymentMethodID: r.LinkedPaymentMethodID.String,
		},
	}
}

// rowFor converts an item into the row struct of its table.
func rowFor(ownerID string, item domain.OrderedItem) (any, error) {
	switch p := item.Payload.(type) {
	case domain.SocialLink:
		return socialLinkRow{
			ID: item.ID, OwnerID: ownerID, Position: item.Position,
			Platform: p.Platform, URL: p.URL, Label: p.Label,
		}, nil
	case domain.PaymentMethod:
		return paymentMethodRow{
			ID: item.ID, OwnerID: ownerID, Position: item.Position,
			Provider: p.Provider, Handle: p.Handle, URL: p.URL, Label: p.Label,
		}, nil
	case domain.QRCode:
		return qrCodeRow{
			ID: item.ID, OwnerID: ownerID, Position: item.Position,
			Label: p.Label, TargetURL: p.TargetURL,
			LinkedSocialLinkID:    nullString(p.LinkedSocialLinkID),
			LinkedPaymentMethodID: nullString(p.LinkedPaymentMethodID),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported payload %T", item.Payload)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toItems[R itemRow](rows []R) []domain.OrderedItem {
	items := make([]domain.OrderedItem, len(rows))
	for i, r := range rows {
		items[i] = r.toItem()
	}
	return items
}
