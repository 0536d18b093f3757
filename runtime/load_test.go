package runtime_test

import (
	"context"
	"fmt"
	"livehub/domain/event"
	"livehub/mocks"
	"livehub/runtime"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_LoadTest(t *testing.T) {
	req := require.New(t)

	// 1. Setup minimaliste (sessions mockées pour ne pas être bridé par le réseau)
	ctrl := gomock.NewController(t)
	log := slog.New(slog.DiscardHandler) // On désactive les logs pour la perf
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, log)

	numChannels := 4
	viewersPerChannel := 50
	eventsPerChannel := 500

	var delivered atomic.Uint64
	for c := 0; c < numChannels; c++ {
		channelID := fmt.Sprintf("chan-%d", c)
		for v := 0; v < viewersPerChannel; v++ {
			session := mocks.NewMockSession(ctrl)
			session.EXPECT().ID().Return(fmt.Sprintf("session-%d-%d", c, v)).AnyTimes()
			session.EXPECT().Deliver(gomock.Any()).Do(
				func(_ []byte) {
					delivered.Add(1)
				},
			).Return(nil).AnyTimes()
			registry.Join(channelID, session)
		}
	}

	// 2. Simulation du trafic: une goroutine émettrice par canal
	start := time.Now()
	var wg sync.WaitGroup
	for c := 0; c < numChannels; c++ {
		wg.Add(1)
		go func(channelID string) {
			defer wg.Done()
			for j := 0; j < eventsPerChannel; j++ {
				broadcaster.Broadcast(context.Background(), event.ChatPosted{
					ChannelID: channelID,
					ID:        uuid.New(),
					UserID:    "load-user",
					Username:  "load",
					Content:   "Ceci est un message de test de charge",
					CreatedAt: time.Now().UTC(),
				})
			}
		}(fmt.Sprintf("chan-%d", c))
	}
	wg.Wait()
	duration := time.Since(start)

	// 3. Résultats
	events := uint64(numChannels * eventsPerChannel)
	expected := events * uint64(viewersPerChannel)
	fmt.Printf("\n--- RÉSULTATS DU STRESS TEST ---\n")
	fmt.Printf("Durée totale     : %v\n", duration)
	fmt.Printf("Événements émis  : %d\n", events)
	fmt.Printf("Trames délivrées : %d\n", delivered.Load())
	fmt.Printf("Débit (fan-out)  : %.2f trames/sec\n", float64(delivered.Load())/duration.Seconds())
	fmt.Printf("--------------------------------\n")

	// 4. Aucune perte, aucune éviction
	req.Equal(expected, delivered.Load())
	for c := 0; c < numChannels; c++ {
		req.Equal(viewersPerChannel, registry.ViewerCount(fmt.Sprintf("chan-%d", c)))
	}
}
