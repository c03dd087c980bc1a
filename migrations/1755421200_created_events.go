package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "events",
			"type": "base",
			"fields": [
				{"name": "title", "type": "text", "required": true},
				{"name": "description", "type": "text"},
				{"name": "start_time", "type": "date"},
				{"name": "end_time", "type": "date"},
				{"name": "creator", "type": "text", "required": true},
				{"name": "public", "type": "bool"},
				{"name": "max_participants", "type": "number"},
				{"name": "room_name", "type": "text"},
				{"name": "passcode_hash", "type": "text"},
				{"name": "participants", "type": "json", "maxSize": 2000000},
				{"name": "created", "type": "autodate", "onCreate": true},
				{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true}
			],
			"indexes": [
				"CREATE INDEX idx_events_creator ON events (creator)",
				"CREATE UNIQUE INDEX idx_events_room_name ON events (room_name)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
