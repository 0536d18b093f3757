package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"livehub/auth"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	HubAddr    string        `envconfig:"HUB_ADDR" default:"localhost:8080"`
	AuthSecret string        `envconfig:"AUTH_SECRET" required:"true"`
	HostUserID string        `envconfig:"HOST_USER_ID" default:"demo-host"`
	Viewers    int           `envconfig:"VIEWERS" default:"5"`
	Messages   int           `envconfig:"MESSAGES" default:"3"`
	ChatGap    time.Duration `envconfig:"CHAT_GAP" default:"200ms"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
}

func main() {
	// 1. Configuration locale (mêmes variables que le hub)
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Jeton signé localement avec le même secret que le serveur
	token, err := auth.GenerateToken([]byte(config.AuthSecret), config.HostUserID, config.TokenTTL)
	if err != nil {
		log.Fatalf("Impossible de signer le jeton: %v", err)
	}

	// 3. Création du stream via REST
	stream := createStream(config, token)
	color.Greenln("✅ Stream créé sur le canal " + stream.ChannelID)

	// 4. L'animateur plus N invités anonymes rejoignent le canal
	var wg sync.WaitGroup
	reports := make([]*viewerReport, 0, config.Viewers+1)

	hostConn := dial(config.HubAddr, stream.ChannelID, token)
	defer hostConn.Close()
	hostReport := &viewerReport{name: "host"}
	reports = append(reports, hostReport)
	wg.Add(1)
	go watch(hostConn, hostReport, &wg)

	for i := 1; i <= config.Viewers; i++ {
		conn := dial(config.HubAddr, stream.ChannelID, "")
		defer conn.Close()
		report := &viewerReport{name: "viewer-" + strconv.Itoa(i)}
		reports = append(reports, report)
		wg.Add(1)
		go watch(conn, report, &wg)
	}
	color.Cyanln(fmt.Sprintf("👋 %d spectateurs connectés", len(reports)))

	// 5. L'animateur envoie ses messages au rythme demandé
	for i := 1; i <= config.Messages; i++ {
		send(hostConn, map[string]string{
			"type":    "chat",
			"content": fmt.Sprintf("Message de charge n°%d", i),
		})
		time.Sleep(config.ChatGap)
	}
	send(hostConn, map[string]string{"type": "reaction", "emoji": "🔥"})

	// 6. Fin du stream: chaque spectateur reçoit l'adieu puis raccroche
	endStream(config, stream.ID, token)
	wg.Wait()

	// 7. Bilan par spectateur
	render(reports, config)
}

type streamInfo struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Title     string `json:"title"`
}

// viewerReport is only written by its own watch goroutine; the main
// goroutine reads it after wg.Wait().
type viewerReport struct {
	name      string
	joins     int
	leaves    int
	chats     int
	reactions int
	ended     bool
	err       error
}

func watch(conn *websocket.Conn, report *viewerReport, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			report.err = err
			return
		}
		switch frame["type"] {
		case "viewer_joined":
			report.joins++
		case "viewer_left":
			report.leaves++
		case "chat":
			report.chats++
		case "reaction":
			report.reactions++
		case "stream_ended":
			report.ended = true
			return
		}
	}
}

func render(reports []*viewerReport, config Config) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Viewer", "Joins", "Leaves", "Chats", "Reactions", "Ended", "Error"})
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

	healthy := true
	for _, report := range reports {
		errText := "-"
		if report.err != nil {
			errText = report.err.Error()
		}
		if report.chats != config.Messages || !report.ended || report.err != nil {
			healthy = false
		}
		table.Append([]string{
			report.name,
			strconv.Itoa(report.joins),
			strconv.Itoa(report.leaves),
			strconv.Itoa(report.chats),
			strconv.Itoa(report.reactions),
			strconv.FormatBool(report.ended),
			errText,
		})
	}
	table.Render()

	if healthy {
		color.Greenln(fmt.Sprintf("✅ %d spectateurs ont reçu les %d messages et l'adieu", len(reports), config.Messages))
	} else {
		color.Redln("❌ Des trames ont été perdues, voir le tableau ci-dessus")
		os.Exit(1)
	}
}

func createStream(config Config, token string) streamInfo {
	payload, _ := json.Marshal(map[string]string{
		"title":       "Load test stream",
		"description": "Session de vérification du fan-out",
	})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/streams", config.HubAddr), bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Impossible de joindre le hub sur %s: %v", config.HubAddr, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		// Le compte doit exister côté serveur, pas seulement le jeton
		log.Fatalf("Compte %q inconnu du hub: lance d'abord cmd/tools pour créer les comptes de démo", config.HostUserID)
	}
	if res.StatusCode != http.StatusCreated {
		log.Fatalf("Création du stream refusée: HTTP %d", res.StatusCode)
	}

	var stream streamInfo
	if err := json.NewDecoder(res.Body).Decode(&stream); err != nil {
		log.Fatalf("Réponse illisible: %v", err)
	}
	return stream
}

func endStream(config Config, streamID, token string) {
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/streams/%s/end", config.HubAddr, streamID), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Impossible de terminer le stream: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		log.Fatalf("Fin du stream refusée: HTTP %d", res.StatusCode)
	}
}

// dial ouvre une connexion spectateur, avec ou sans jeton
func dial(addr, channelID, token string) *websocket.Conn {
	u := fmt.Sprintf("ws://%s/ws/live/%s", addr, channelID)
	if token != "" {
		u += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		log.Fatalf("Connexion WebSocket impossible sur %s: %v", u, err)
	}
	return conn
}

func send(conn *websocket.Conn, frame map[string]string) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Fatalf("Envoi impossible: %v", err)
	}
}
