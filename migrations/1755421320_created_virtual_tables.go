package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "virtual_tables",
			"type": "base",
			"fields": [
				{"name": "event", "type": "text", "required": true},
				{"name": "name", "type": "text", "required": true},
				{"name": "capacity", "type": "number", "required": true},
				{"name": "participants", "type": "json", "maxSize": 2000000},
				{"name": "created", "type": "autodate", "onCreate": true},
				{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true}
			],
			"indexes": [
				"CREATE INDEX idx_virtual_tables_event ON virtual_tables (event)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("virtual_tables")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
