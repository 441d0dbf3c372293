package models

// All lists every persisted model in dependency order. It backs AutoMigrate for
// SQLite dev databases and repository tests; Postgres uses the goose migrations.
func All() []any {
	return []any{
		&User{},
		&MaterialRequest{},
		&PurchaseOrder{},
		&GoodsReceivedNote{},
		&GoodsReceivedItem{},
		&Notification{},
		&NotificationPreference{},
	}
}
