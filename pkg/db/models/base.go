package models

import "github.com/google/uuid"

// ensureID assigns a v4 id before insert so sqlite and postgres behave alike.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model; sqlite installs auto-migrate from it.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&PromoCode{},
		&Order{},
		&OrderItem{},
	}
}
