package postgres

import "github.com/vietddude/linkpay/internal/core/domain"

type collectionQueries struct {
	list   string
	get    string
	insert string
	update string
}

var queries = map[domain.CollectionType]collectionQueries{
	domain.CollectionSocialLinks: {
		list: `SELECT id, owner_id, position, platform, url, label
			FROM social_links WHERE owner_id = $1 ORDER BY position, created_at`,
		get: `SELECT id, owner_id, position, platform, url, label
			FROM social_links WHERE owner_id = $1 AND id = $2`,
		insert: `INSERT INTO social_links (id, owner_id, position, platform, url, label)
			VALUES (:id, :owner_id, :position, :platform, :url, :label)`,
		update: `UPDATE social_links SET platform = :platform, url = :url, label = :label, updated_at = now()
			WHERE owner_id = :owner_id AND id = :id`,
	},
	domain.CollectionPaymentMethods: {
		list: `SELECT id, owner_id, position, provider, handle, url, label
			FROM payment_methods WHERE owner_id = $1 ORDER BY position, created_at`,
		get: `SELECT id, owner_id, position, provider, handle, url, label
			FROM payment_methods WHERE owner_id = $1 AND id = $2`,
		insert: `INSERT INTO payment_methods (id, owner_id, position, provider, handle, url, label)
			VALUES (:id, :owner_id, :position, :provider, :handle, :url, :label)`,
		update: `UPDATE payment_methods SET provider = :provider, handle = :handle, url = :url, label = :label,
			updated_at = now() WHERE owner_id = :owner_id AND id = :id`,
	},
	domain.CollectionQRCodes: {
		list: `SELECT id, owner_id, position, label, target_url, linked_social_link_id, linked_payment_method_id
			FROM qr_codes WHERE owner_id = $1 ORDER BY position, created_at`,
		get: `SELECT id, owner_id, position, label, target_url, linked_social_link_id, linked_payment_method_id
			FROM qr_codes WHERE owner_id = $1 AND id = $2`,
		insert: `INSERT INTO qr_codes (id, owner_id, position, label, target_url, linked_social_link_id, linked_payment_method_id)
			VALUES (:id, :owner_id, :position, :label, :target_url, :linked_social_link_id, :linked_payment_method_id)`,
		update: `UPDATE qr_codes SET label = :label, target_url = :target_url,
			linked_social_link_id = :linked_social_link_id, linked_payment_method_id = :linked_payment_method_id,
			updated_at = now() WHERE owner_id = :owner_id AND id = :id`,
	},
}
