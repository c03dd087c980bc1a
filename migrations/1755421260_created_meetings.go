package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "meetings",
			"type": "base",
			"fields": [
				{"name": "event", "type": "text", "required": true},
				{"name": "host", "type": "text"},
				{"name": "room_name", "type": "text", "required": true},
				{"name": "recording_url", "type": "text"},
				{"name": "participants", "type": "json", "maxSize": 2000000},
				{"name": "started_at", "type": "date"},
				{"name": "ended_at", "type": "date"},
				{"name": "created", "type": "autodate", "onCreate": true},
				{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true}
			],
			"indexes": [
				"CREATE INDEX idx_meetings_event ON meetings (event)",
				"CREATE INDEX idx_meetings_room_name ON meetings (room_name)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("meetings")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
