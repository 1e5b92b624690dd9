package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// resultRequest mirrors the body of POST /api/battle_result
type resultRequest struct {
	BattleID string `json:"battle_id"`
	Winner   string `json:"winner,omitempty"`
	Draw     bool   `json:"draw,omitempty"`
}

// fightBattles draws and settles battles concurrently using a worker pool
func fightBattles(ctx context.Context, config *Config, stats *Stats) error {
	log.Printf("🥊 Fighting %d battles with %d workers...", config.NumBattles, config.Workers)

	client := newHTTPClient(config.Timeout)

	// Counters for statistics
	var (
		drawn    int64
		accepted int64
		rejected int64
		draws    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	battleChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for range battleChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := fightSingleBattle(ctx, client, config, rng)

					switch result {
					case "accepted":
						atomic.AddInt64(&drawn, 1)
						atomic.AddInt64(&accepted, 1)
					case "draw":
						atomic.AddInt64(&drawn, 1)
						atomic.AddInt64(&accepted, 1)
						atomic.AddInt64(&draws, 1)
					case "rejected":
						atomic.AddInt64(&drawn, 1)
						atomic.AddInt64(&rejected, 1)
					case "failed":
						atomic.AddInt64(&rejected, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&drawn)
						acc := atomic.LoadInt64(&accepted)
						rej := atomic.LoadInt64(&rejected)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d battles (accepted: %d, rejected: %d)",
								total, config.NumBattles, acc, rej)
						} else {
							fmt.Printf("\r🥊 Battles: %d/%d (accepted: %d, rejected: %d)",
								total, config.NumBattles, acc, rej)
						}
					}
				}
			}
		}(i)
	}

	// Feed the workers
	go func() {
		defer close(battleChan)
		for i := 0; i < config.NumBattles; i++ {
			select {
			case <-ctx.Done():
				return
			case battleChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.BattlesDrawn = int(atomic.LoadInt64(&drawn))
	stats.VotesSubmitted = int(atomic.LoadInt64(&accepted) + atomic.LoadInt64(&rejected))
	stats.VotesAccepted = int(atomic.LoadInt64(&accepted))
	stats.VotesRejected = int(atomic.LoadInt64(&rejected))
	stats.Draws = int(atomic.LoadInt64(&draws))

	log.Printf(`✅ Battle run completed:
   Accepted: %d
   Rejected: %d
   Draws: %d
`, stats.VotesAccepted, stats.VotesRejected, stats.Draws)

	return nil
}

// fightSingleBattle draws one battle and votes on it; returns the outcome kind
func fightSingleBattle(ctx context.Context, client *HTTPClient, config *Config, rng *rand.Rand) string {
	var battle Battle
	if err := client.getJSON(ctx, config.BaseURL+"/api/battle", &battle); err != nil {
		if config.Verbose {
			log.Printf("⚠️  Failed to draw battle: %v", err)
		}
		return "failed"
	}
	if len(battle.Contestants) != 2 {
		return "failed"
	}

	req := resultRequest{BattleID: battle.BattleID}
	kind := "accepted"
	if rng.Float64() < config.DrawRate {
		req.Draw = true
		kind = "draw"
	} else {
		req.Winner = battle.Contestants[rng.Intn(2)].ID
	}

	resp, err := client.Post(ctx, config.BaseURL+"/api/battle_result", req)
	if err != nil {
		return "failed"
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	if resp.StatusCode != http.StatusOK {
		if config.Verbose {
			log.Printf("⚠️  Vote rejected (%d): %s", resp.StatusCode, string(body))
		}
		return "rejected"
	}

	var result VoteResult
	if err := json.Unmarshal(body, &result); err == nil && config.Verbose {
		log.Printf("🎭 %s: %s vs %s", battle.Category, result.Revealed["a"], result.Revealed["b"])
	}
	return kind
}
