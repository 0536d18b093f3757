package main

import (
	"encoding/json"
	"fmt"
	"livehub/internal"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the hub) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	// We provide a static stats provider since the hub isn't running here
	emptyStats := func() map[string]any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}

	fmt.Printf("🌐 Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	internal.StartDebugServer(db, config.DebugPort, "/inspect", RecordMapper, emptyStats)
	select {}
}

// RecordMapper decodes the hub's JSON records so the dashboard shows
// stream titles and chat lines instead of byte sizes.
// The record shapes are copied here to keep the viewer independent.
func RecordMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	switch row.Type {
	case "STREAM":
		var s streamRecord
		if err := json.Unmarshal(val, &s); err != nil {
			return row
		}
		row.Channel = s.ChannelID
		row.Timestamp = time.Unix(0, s.CreatedAt).Format("15:04:05")
		row.Detail = fmt.Sprintf("%q by %s", s.Title, s.HostName)
		row.Status = fmt.Sprintf("LIVE (%d viewers)", s.ViewerCount)
		if !s.Live {
			row.Status = "ENDED"
		}
	case "MSG":
		var m messageRecord
		if err := json.Unmarshal(val, &m); err != nil {
			return row
		}
		row.Detail = fmt.Sprintf("%s: %s", m.SenderName, m.Content)
	case "USER":
		var u userRecord
		if err := json.Unmarshal(val, &u); err != nil {
			return row
		}
		row.Detail = u.Username
		row.Status = "OK"
		if u.Admin {
			row.Status = "ADMIN"
		}
		if u.Banned {
			row.Status = "BANNED"
		}
	case "STREAM_HOST", "STREAM_CHANNEL":
		// Index entries only hold the target stream ID
		id := string(val)
		if len(id) > 8 {
			id = id[:8]
		}
		row.Type = "INDEX"
		row.Detail = "-> stream " + id
	}
	return row
}

type streamRecord struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	HostName    string `json:"host_name"`
	Title       string `json:"title"`
	Live        bool   `json:"is_live"`
	ViewerCount int    `json:"viewer_count"`
	CreatedAt   int64  `json:"created_at"`
}

type messageRecord struct {
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
}

type userRecord struct {
	Username string `json:"username"`
	Banned   bool   `json:"is_banned"`
	Admin    bool   `json:"is_admin"`
}
