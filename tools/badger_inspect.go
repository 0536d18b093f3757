package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// Par défaut on liste les streams, le reste s'obtient avec -prefix
	prefix := flag.String("prefix", "stream:", "Prefix to scan (stream:, msg:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Channel", "Detail", "Status"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Sécurité : on ignore explicitement les index secondaires
			if strings.HasPrefix(key, "stream_host:") || strings.HasPrefix(key, "stream_channel:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// toRow decodes a record according to its key prefix. Unknown or broken
// records fall back to a raw size row instead of stopping the scan.
func toRow(key string, v []byte) []string {
	switch {
	case strings.HasPrefix(key, "stream:"):
		var s streamRecord
		if err := json.Unmarshal(v, &s); err != nil {
			break
		}
		status := fmt.Sprintf("LIVE (%d viewers)", s.ViewerCount)
		if !s.Live {
			status = "ENDED"
		}
		return []string{
			key, "STREAM",
			time.Unix(0, s.CreatedAt).Format("15:04:05"),
			shortID(s.ID), s.ChannelID,
			fmt.Sprintf("%q by %s", s.Title, s.HostName),
			status,
		}
	case strings.HasPrefix(key, "msg:"):
		var m messageRecord
		if err := json.Unmarshal(v, &m); err != nil {
			break
		}
		return []string{
			key, "MSG",
			time.Unix(0, m.CreatedAt).Format("15:04:05"),
			shortID(m.ID), m.ChannelID,
			fmt.Sprintf("%s: %s", m.SenderName, m.Content),
			"-",
		}
	case strings.HasPrefix(key, "user:"):
		var u userRecord
		if err := json.Unmarshal(v, &u); err != nil {
			break
		}
		status := "OK"
		if u.Admin {
			status = "ADMIN"
		}
		if u.Banned {
			status = "BANNED"
		}
		return []string{
			key, "USER",
			time.Unix(0, u.CreatedAt).Format("15:04:05"),
			shortID(u.ID), "-", u.Username, status,
		}
	}
	return []string{key, "RAW", "--:--:--", "--------", "-", fmt.Sprintf("Size: %d bytes", len(v)), "-"}
}

// On affiche les 8 premiers caractères des identifiants pour la lisibilité
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Les formes de stockage sont recopiées ici pour garder l'outil autonome
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
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
}

type userRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Banned    bool   `json:"is_banned"`
	Admin     bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Si corruption détectée, essaie un open en write pour truncate
		if strings.Contains(err.Error(), "Log truncate required") {
			fmt.Println("⚠️  Log truncate required, repairing...")

			// Open en mode write pour permettre le truncate
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			// Ferme et réouvre en read-only
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
