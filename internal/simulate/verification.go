package simulate

import (
	"context"
	"fmt"
	"log"
)

// verifyResults checks the final leaderboard against the battle run.
func verifyResults(ctx context.Context, config *Config, before, after *Leaderboard, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	// Every accepted vote moves the shared total by exactly one.
	expected := stats.StartVotes + stats.VotesAccepted
	if after.TotalVotes != expected {
		// Another voter may be running against the same service; warn, don't fail.
		if after.TotalVotes < expected {
			return fmt.Errorf("total votes went backwards: expected at least %d, got %d", expected, after.TotalVotes)
		}
		log.Printf("⚠️  Total votes %d exceeds expected %d; concurrent voters present?", after.TotalVotes, expected)
	} else {
		log.Printf("✅ Vote accounting verified: %d + %d accepted = %d", stats.StartVotes, stats.VotesAccepted, after.TotalVotes)
	}

	if err := verifyLeaderboardShape(after); err != nil {
		return err
	}
	log.Println("✅ Leaderboard shape verified")

	displayStandings(after, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyLeaderboardShape checks ordering and competition ranking.
func verifyLeaderboardShape(view *Leaderboard) error {
	entries := view.Leaderboard
	if len(entries) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	if entries[0].Rank != 1 {
		return fmt.Errorf("leaderboard does not start at rank 1: got %d", entries[0].Rank)
	}

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Elo > prev.Elo {
			return fmt.Errorf("leaderboard not sorted: entry %d has higher elo than entry %d", i, i-1)
		}
		// Ranking happens on raw ratings before display rounding, so two
		// entries showing the same rounded Elo may still rank apart. Only
		// monotonicity and the competition-ranking bound are checkable here.
		if cur.Rank < prev.Rank {
			return fmt.Errorf("ranks go backwards: entry %d has rank %d after rank %d", i, cur.Rank, prev.Rank)
		}
		if cur.Rank > i+1 {
			return fmt.Errorf("rank %d at position %d exceeds competition-ranking bound", cur.Rank, i+1)
		}
		if cur.Elo < prev.Elo && cur.Rank != i+1 {
			return fmt.Errorf("rank after lower elo should resume at position: entry %d has rank %d", i, cur.Rank)
		}
	}
	return nil
}

// displayStandings shows the current standings.
func displayStandings(view *Leaderboard, verbose bool) {
	topN := 10
	if len(view.Leaderboard) < topN {
		topN = len(view.Leaderboard)
	}

	log.Printf("🏆 Top %d models:", topN)
	for i := 0; i < topN; i++ {
		entry := view.Leaderboard[i]
		log.Printf("   %d. %s - Elo: %.1f (%d votes)", entry.Rank, entry.Model, entry.Elo, entry.Votes)
	}

	if verbose {
		log.Printf("📈 Total votes across the arena: %d", view.TotalVotes)
	}
}
