package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "provider_services",
			"type": "base",
			"fields": [
				{"name": "provider", "type": "text", "required": true},
				{"name": "title", "type": "text", "required": true},
				{"name": "description", "type": "text"},
				{"name": "price", "type": "text"},
				{"name": "currency", "type": "text"},
				{"name": "created", "type": "autodate", "onCreate": true},
				{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true}
			],
			"indexes": [
				"CREATE INDEX idx_provider_services_provider ON provider_services (provider)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("provider_services")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
