package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/arena/internal/adapters/http/api"
	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/types"
	"github.com/okian/arena/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testCatalog() model.Catalog {
	return model.Catalog{
		"alpha": {
			"puns": {"alpha pun"},
			"anti": {"alpha anti"},
		},
		"beta": {
			"puns": {"beta pun"},
			"anti": {"beta anti"},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()

	svc := service.New(
		service.WithContent([]string{"alpha", "beta"}, testCatalog()),
		service.WithStateFile(filepath.Join(t.TempDir(), "elo_state.json")),
		service.WithRandSource(rand.NewSource(5)),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, svc
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body, v any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestGetLeaderboard(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		convey.Convey("When fetching the leaderboard", func() {
			var view types.LeaderboardView
			status := getJSON(t, ts.URL+"/api/leaderboard", &view)

			convey.Convey("Then the full standings come back", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(len(view.Leaderboard), convey.ShouldEqual, 2)
				convey.So(view.TotalVotes, convey.ShouldEqual, 0)
				convey.So(view.Explanation, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When using the wrong method", func() {
			status := postJSON(t, ts.URL+"/api/leaderboard", map[string]string{}, nil)

			convey.Convey("Then the route is not found", func() {
				convey.So(status, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestGetBattle(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		convey.Convey("When drawing a battle", func() {
			var battle types.BattleView
			status := getJSON(t, ts.URL+"/api/battle", &battle)

			convey.Convey("Then the response is anonymized", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(battle.BattleID, convey.ShouldNotBeEmpty)
				convey.So(battle.Contestants[0].ID, convey.ShouldEqual, "a")
				convey.So(battle.Contestants[1].ID, convey.ShouldEqual, "b")
				convey.So(battle.Contestants[0].Joke, convey.ShouldNotBeEmpty)
			})
		})
	})

	convey.Convey("Given a service with no eligible categories", t, func() {
		svc := service.New(
			service.WithContent([]string{"alpha"}, model.Catalog{"alpha": {"puns": {"solo"}}}),
			service.WithStateFile(filepath.Join(t.TempDir(), "elo_state.json")),
		)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		ts := httptest.NewServer(mux)
		defer ts.Close()

		convey.Convey("When drawing a battle", func() {
			var errBody struct {
				Code string `json:"code"`
			}
			status := getJSON(t, ts.URL+"/api/battle", &errBody)

			convey.Convey("Then the API reports no battles available", func() {
				convey.So(status, convey.ShouldEqual, http.StatusConflict)
				convey.So(errBody.Code, convey.ShouldEqual, "no_battles_available")
			})
		})
	})
}

func TestPostBattleResult(t *testing.T) {
	convey.Convey("Given a running API server with a drawn battle", t, func() {
		ts, _ := newTestServer(t)

		var battle types.BattleView
		convey.So(getJSON(t, ts.URL+"/api/battle", &battle), convey.ShouldEqual, http.StatusOK)

		convey.Convey("When voting for contestant a", func() {
			var result types.VoteResult
			status := postJSON(t, ts.URL+"/api/battle_result",
				map[string]any{"battle_id": battle.BattleID, "winner": "a"}, &result)

			convey.Convey("Then the vote settles and identities are revealed", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(result.TotalVotes, convey.ShouldEqual, 1)
				convey.So(result.Revealed["a"], convey.ShouldBeIn, []string{"alpha", "beta"})
				convey.So(result.Revealed["b"], convey.ShouldBeIn, []string{"alpha", "beta"})
			})

			convey.Convey("And replaying the same battle id fails with 404", func() {
				var errBody struct {
					Code string `json:"code"`
				}
				status := postJSON(t, ts.URL+"/api/battle_result",
					map[string]any{"battle_id": battle.BattleID, "winner": "b"}, &errBody)

				convey.So(status, convey.ShouldEqual, http.StatusNotFound)
				convey.So(errBody.Code, convey.ShouldEqual, "battle_not_found")
			})
		})

		convey.Convey("When voting a draw", func() {
			var result types.VoteResult
			status := postJSON(t, ts.URL+"/api/battle_result",
				map[string]any{"battle_id": battle.BattleID, "draw": true}, &result)

			convey.Convey("Then ratings stay put and the total advances", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(result.TotalVotes, convey.ShouldEqual, 1)
				for _, entry := range result.Leaderboard {
					convey.So(entry.Elo, convey.ShouldEqual, 1500.0)
				}
			})
		})

		convey.Convey("When naming a model outside the battle", func() {
			var errBody struct {
				Code string `json:"code"`
			}
			status := postJSON(t, ts.URL+"/api/battle_result",
				map[string]any{"battle_id": battle.BattleID, "winner": "nobody"}, &errBody)

			convey.Convey("Then the API rejects the winner", func() {
				convey.So(status, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(errBody.Code, convey.ShouldEqual, "invalid_winner")
			})
		})

		convey.Convey("When sending malformed requests", func() {
			// Missing battle_id, neither winner nor draw, and both at once.
			cases := []map[string]any{
				{},
				{"battle_id": battle.BattleID},
				{"battle_id": battle.BattleID, "winner": "a", "draw": true},
			}

			convey.Convey("Then each is a 400 bad_request", func() {
				for _, body := range cases {
					var errBody struct {
						Code string `json:"code"`
					}
					status := postJSON(t, ts.URL+"/api/battle_result", body, &errBody)
					convey.So(status, convey.ShouldEqual, http.StatusBadRequest)
					convey.So(errBody.Code, convey.ShouldEqual, "bad_request")
				}
			})
		})

		convey.Convey("When referencing an unknown battle id", func() {
			var errBody struct {
				Code string `json:"code"`
			}
			status := postJSON(t, ts.URL+"/api/battle_result",
				map[string]any{"battle_id": "unknown", "winner": "a"}, &errBody)

			convey.Convey("Then the API reports battle_not_found", func() {
				convey.So(status, convey.ShouldEqual, http.StatusNotFound)
				convey.So(errBody.Code, convey.ShouldEqual, "battle_not_found")
			})
		})
	})
}

func TestGetRank(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		convey.Convey("When asking for a roster model", func() {
			var entry api.Entry
			status := getJSON(t, ts.URL+"/api/rank/alpha", &entry)

			convey.Convey("Then its standing comes back", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(entry.Model, convey.ShouldEqual, "alpha")
				convey.So(entry.Rank, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When asking for an unknown model", func() {
			status := getJSON(t, ts.URL+"/api/rank/unknown", nil)

			convey.Convey("Then the API responds 404", func() {
				convey.So(status, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestFullBattleFlow(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		convey.Convey("When several battles run back to back", func() {
			const rounds = 5
			for i := 0; i < rounds; i++ {
				var battle types.BattleView
				convey.So(getJSON(t, ts.URL+"/api/battle", &battle), convey.ShouldEqual, http.StatusOK)

				var result types.VoteResult
				status := postJSON(t, ts.URL+"/api/battle_result",
					map[string]any{"battle_id": battle.BattleID, "winner": "b"}, &result)
				convey.So(status, convey.ShouldEqual, http.StatusOK)
			}

			convey.Convey("Then the leaderboard total matches the votes cast", func() {
				var view types.LeaderboardView
				convey.So(getJSON(t, ts.URL+"/api/leaderboard", &view), convey.ShouldEqual, http.StatusOK)
				convey.So(view.TotalVotes, convey.ShouldEqual, rounds)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		convey.Convey("When fetching stats", func() {
			var stats map[string]any
			status := getJSON(t, ts.URL+"/stats", &stats)

			convey.Convey("Then the service snapshot is served", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				convey.So(stats["started"], convey.ShouldEqual, true)
			})
		})
	})
}
