package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"game-session-engine/models"
	"game-session-engine/services"
	"game-session-engine/utils"
)

const syncBatchSize = 50

// EventSyncClient forwards selected event kinds to the external sync
// service. Events stay unsynced on failure, so the poll loop retries the
// same batch next tick — at-least-once, never lost.
type EventSyncClient struct {
	BaseURL    string
	Token      string
	Kinds      []string
	HTTPClient *http.Client
	Events     *services.EventService
}

func NewEventSyncClient(cfg *utils.Config, events *services.EventService) *EventSyncClient {
	return &EventSyncClient{
		BaseURL: cfg.SyncServiceURL,
		Token:   cfg.ServiceToken,
		Kinds:   cfg.SyncEventKinds,
		Events:  events,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PushEvents posts one batch to the sync service.
func (c *EventSyncClient) PushEvents(ctx context.Context, events []models.Event) error {
	body, err := json.Marshal(map[string]any{"events": events})
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/v1/public/game-events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// PollEvents mirrors unsynced events on a fixed interval until ctx ends.
func PollEvents(ctx context.Context, client *EventSyncClient, pollInterval time.Duration) {
	log.Println("Starting event mirror polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Event mirror polling stopped.")
			return
		case <-ticker.C:
			events, err := client.Events.UnsyncedByKinds(client.Kinds, syncBatchSize)
			if err != nil {
				log.Printf("❌ Error loading unsynced events: %v", err)
				continue
			}
			if len(events) == 0 {
				continue
			}

			if err := client.PushEvents(ctx, events); err != nil {
				// leave synced=false — same batch goes out next tick
				log.Printf("❌ Error mirroring %d event(s): %v", len(events), err)
				continue
			}

			ids := make([]uint64, len(events))
			for i := range events {
				ids[i] = events[i].ID
			}
			if err := client.Events.MarkSynced(ids); err != nil {
				log.Printf("❌ Failed to flag %d mirrored event(s): %v", len(ids), err)
				continue
			}
			log.Printf("✅ Mirrored %d event(s) to sync service.", len(events))
		}
	}
}
