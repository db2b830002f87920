package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

type Snapshot struct {
	TableID    string `json:"table_id"`
	Phase      string `json:"phase"`
	PhaseEndIn int64  `json:"phase_end_in_ms"`
	Confirmed  int64  `json:"confirmed"`
}

type BetRequest struct {
	BetType string `json:"bet_type"`
	Amount  int64  `json:"amount"`
}

var betTypes = []string{"banker", "player", "tie", "banker_pair", "player_pair", "big", "small"}

func main() {
	baseURL := getenv("BASE_URL", "http://localhost:8080")
	tableID := getenv("TABLE_ID", "table-1")
	client := &http.Client{Timeout: 5 * time.Second}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	stateURL := fmt.Sprintf("%s/api/tables/%s/state", baseURL, tableID)
	betURL := fmt.Sprintf("%s/api/tables/%s/bets", baseURL, tableID)
	confirmURL := betURL + "/confirm"

	var betThisRound bool
	for {
		time.Sleep(500 * time.Millisecond)
		snap, err := fetchState(client, stateURL)
		if err != nil {
			log.Printf("state: %v", err)
			continue
		}
		if snap.Phase != "betting" {
			betThisRound = false
			continue
		}
		if betThisRound {
			continue
		}
		req := BetRequest{
			BetType: betTypes[rnd.Intn(len(betTypes))],
			Amount:  int64(10 * (1 + rnd.Intn(10))),
		}
		if err := post(client, betURL, req); err != nil {
			log.Printf("bet %s %d rejected: %v", req.BetType, req.Amount, err)
			continue
		}
		log.Printf("bet %s %d placed", req.BetType, req.Amount)
		if err := post(client, confirmURL, nil); err != nil {
			log.Printf("confirm failed: %v", err)
			continue
		}
		log.Printf("bets confirmed")
		betThisRound = true
	}
}

func fetchState(client *http.Client, url string) (Snapshot, error) {
	resp, err := client.Get(url)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func post(client *http.Client, url string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
