package domain

import (
	"encoding/json"
	"fmt"
)

// OrderedItem is one row of a reorderable collection.
// Only Position is ever changed by ordering operations.
type OrderedItem struct {
	ID       string
	Position int
	Payload  Payload
}

// Collection returns the collection the item belongs to, or "" without payload.
func (i OrderedItem) Collection() CollectionType {
	if i.Payload == nil {
		return ""
	}
	return i.Payload.Collection()
}

// PositionUpdate is one entry of a reorder batch.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Positions builds the full-scope sync payload for items.
func Positions(items []OrderedItem) []PositionUpdate {
	updates := make([]PositionUpdate, len(items))
	for i, item := range items {
		updates[i] = PositionUpdate{ID: item.ID, Position: item.Position}
	}
	return updates
}

type itemJSON struct {
	ID       string          `json:"id"`
	Position int             `json:"position"`
	Type     CollectionType  `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the item with its collection tag as discriminator.
func (i OrderedItem) MarshalJSON() ([]byte, error) {
	out := itemJSON{ID: i.ID, Position: i.Position, Type: i.Collection()}
	if i.Payload != nil {
		data, err := json.Marshal(i.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		out.Data = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an item, picking the payload type from "type".
func (i *OrderedItem) UnmarshalJSON(b []byte) error {
	var in itemJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	payload, err := DecodePayload(in.Type, in.Data)
	if err != nil {
		return err
	}
	*i = OrderedItem{ID: in.ID, Position: in.Position, Payload: payload}
	return nil
}

// DecodePayload decodes raw JSON into the payload type of collection.
// Empty data yields a zero payload of that type.
func DecodePayload(collection CollectionType, data []byte) (Payload, error) {
	var (
		payload Payload
		err     error
	)
	switch collection {
	case CollectionSocialLinks:
		var p SocialLink
		err = unmarshalOptional(data, &p)
		payload = p
	case CollectionPaymentMethods:
		var p PaymentMethod
		err = unmarshalOptional(data, &p)
		payload = p
	case CollectionQRCodes:
		var p QRCode
		err = unmarshalOptional(data, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown collection type %q", collection)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", collection, err)
	}
	return payload, nil
}

func unmarshalOptional(data []byte, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}
