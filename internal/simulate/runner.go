package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/arena/pkg/logger"
)

// Run executes the complete battle simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting arena battle simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("battles", config.NumBattles),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Float64("drawRate", config.DrawRate),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Snapshot the leaderboard before fighting
	before, err := getLeaderboard(ctx, client, config)
	if err != nil {
		return fmt.Errorf("initial leaderboard retrieval failed: %w", err)
	}
	stats.StartVotes = before.TotalVotes

	// Step 3: Fight battles concurrently
	if err := fightBattles(ctx, config, stats); err != nil {
		return fmt.Errorf("battle run failed: %w", err)
	}

	// Step 4: Snapshot the leaderboard after fighting
	after, err := getLeaderboard(ctx, client, config)
	if err != nil {
		return fmt.Errorf("final leaderboard retrieval failed: %w", err)
	}
	stats.EndVotes = after.TotalVotes

	// Step 5: Verify results
	if err := verifyResults(ctx, config, before, after, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// getLeaderboard fetches the current standings.
func getLeaderboard(ctx context.Context, client *HTTPClient, config *Config) (*Leaderboard, error) {
	var view Leaderboard
	if err := client.getJSON(ctx, config.BaseURL+"/api/leaderboard", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, battlesPerSecond float64

	if stats.VotesSubmitted > 0 {
		acceptRate = float64(stats.VotesAccepted) / float64(stats.VotesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		battlesPerSecond = float64(stats.BattlesDrawn) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("battlesDrawn", stats.BattlesDrawn),
		logger.Int("votesSubmitted", stats.VotesSubmitted),
		logger.Int("votesAccepted", stats.VotesAccepted),
		logger.Int("votesRejected", stats.VotesRejected),
		logger.Int("draws", stats.Draws),
		logger.Int("startVotes", stats.StartVotes),
		logger.Int("endVotes", stats.EndVotes),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("battlesPerSecond", battlesPerSecond))
}
