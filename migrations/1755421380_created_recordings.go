package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "recordings",
			"type": "base",
			"fields": [
				{"name": "meeting", "type": "text"},
				{"name": "event", "type": "text", "required": true},
				{"name": "owner", "type": "text", "required": true},
				{"name": "title", "type": "text"},
				{"name": "started_at", "type": "date"},
				{"name": "ended_at", "type": "date"},
				{"name": "duration", "type": "number"},
				{"name": "file_size", "type": "number"},
				{"name": "blob_key", "type": "text"},
				{"name": "url", "type": "text"},
				{"name": "created", "type": "autodate", "onCreate": true},
				{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true}
			],
			"indexes": [
				"CREATE INDEX idx_recordings_event ON recordings (event)",
				"CREATE INDEX idx_recordings_owner ON recordings (owner)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("recordings")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
