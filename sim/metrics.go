// Tracks per-episode and run-wide driving statistics such as:
// score, distance, crash rate and controller throughput.

package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// EpisodeMetrics aggregates statistics about one episode.
type EpisodeMetrics struct {
	Episode      int              `json:"episode"`
	Ticks        int64            `json:"ticks"`
	Score        float64          `json:"score"`
	Distance     float64          `json:"distance"`
	Crashed      bool             `json:"crashed"`
	CrashTick    int64            `json:"crash_tick,omitempty"`
	Spawns       int              `json:"spawns"`
	Culls        int              `json:"culls"`
	PeakActors   int              `json:"peak_actors"`
	TopSpeed     float64          `json:"top_speed"`
	SpeedSum     float64          `json:"-"`
	StalledTicks int64            `json:"stalled_ticks"`
	MinFront     int              `json:"min_front_distance"`
	Actions      map[string]int64 `json:"actions"`
}

func newEpisodeMetrics(episode int) EpisodeMetrics {
	return EpisodeMetrics{
		Episode:  episode,
		MinFront: SensorRange,
		Actions:  make(map[string]int64, NumActions),
	}
}

// record folds one tick into the episode statistics. Ticks spent crashed
// count toward Ticks but not toward the driving statistics.
func (m *EpisodeMetrics) record(e *Environment, a Action) {
	m.Ticks = e.episodeTick
	m.Score = e.score
	m.Actions[a.String()]++
	if !e.vehicle.Alive {
		if !m.Crashed {
			m.Crashed = true
			m.CrashTick = e.episodeTick
		}
		return
	}
	v := e.vehicle
	m.Distance = v.DistanceTraveled
	m.TopSpeed = max(m.TopSpeed, v.Speed)
	m.SpeedSum += v.Speed
	if v.Speed < StallSpeed {
		m.StalledTicks++
	}
	m.MinFront = min(m.MinFront, v.Sensors[0].Distance)
	m.PeakActors = max(m.PeakActors, len(e.actors))
}

// MeanSpeed is the average speed over the ticks driven alive.
func (m EpisodeMetrics) MeanSpeed() float64 {
	alive := m.Ticks
	if m.Crashed {
		alive = m.CrashTick - 1
	}
	if alive <= 0 {
		return 0
	}
	return m.SpeedSum / float64(alive)
}

// RunMetrics aggregates finished episodes of a headless run for final
// reporting. Useful for comparing policies and configs.
type RunMetrics struct {
	Policy   string           `json:"policy"`
	Seed     int64            `json:"seed"`
	Episodes []EpisodeMetrics `json:"episodes"`
}

// RunSummary is the JSON-facing digest of a run.
type RunSummary struct {
	Policy        string  `json:"policy"`
	Seed          int64   `json:"seed"`
	Episodes      int     `json:"episodes"`
	TotalTicks    int64   `json:"total_ticks"`
	CrashRate     float64 `json:"crash_rate"`
	MeanScore     float64 `json:"mean_score"`
	P50Score      float64 `json:"p50_score"`
	P90Score      float64 `json:"p90_score"`
	BestScore     float64 `json:"best_score"`
	MeanDistance  float64 `json:"mean_distance"`
	MeanSpeed     float64 `json:"mean_speed"`
	MeanSpawns    float64 `json:"mean_spawns"`
	StepsPerSec   float64 `json:"steps_per_sec"`
	WallClockSecs float64 `json:"wall_clock_secs"`
}

// Add appends a finished episode.
func (r *RunMetrics) Add(m EpisodeMetrics) {
	r.Episodes = append(r.Episodes, m)
}

// Summarize digests the recorded episodes. elapsed is the wall-clock time
// the run took and feeds the throughput figure.
func (r *RunMetrics) Summarize(elapsed time.Duration) RunSummary {
	s := RunSummary{Policy: r.Policy, Seed: r.Seed, Episodes: len(r.Episodes)}
	if len(r.Episodes) == 0 {
		return s
	}
	scores := lo.Map(r.Episodes, func(m EpisodeMetrics, _ int) float64 { return m.Score })
	s.TotalTicks = lo.SumBy(r.Episodes, func(m EpisodeMetrics) int64 { return m.Ticks })
	crashes := lo.CountBy(r.Episodes, func(m EpisodeMetrics) bool { return m.Crashed })
	s.CrashRate = float64(crashes) / float64(len(r.Episodes))
	s.MeanScore = CalculateMean(scores)
	s.P50Score = CalculatePercentile(scores, 50)
	s.P90Score = CalculatePercentile(scores, 90)
	s.BestScore = lo.Max(scores)
	s.MeanDistance = CalculateMean(lo.Map(r.Episodes, func(m EpisodeMetrics, _ int) float64 { return m.Distance }))
	s.MeanSpeed = CalculateMean(lo.Map(r.Episodes, func(m EpisodeMetrics, _ int) float64 { return m.MeanSpeed() }))
	s.MeanSpawns = CalculateMean(lo.Map(r.Episodes, func(m EpisodeMetrics, _ int) int { return m.Spawns }))
	s.WallClockSecs = elapsed.Seconds()
	if elapsed > 0 {
		s.StepsPerSec = float64(s.TotalTicks) / elapsed.Seconds()
	}
	return s
}

// Print displays the run digest as indented JSON on stdout.
func (r *RunMetrics) Print(elapsed time.Duration) {
	data, err := json.MarshalIndent(r.Summarize(elapsed), "", "  ")
	if err != nil {
		logrus.Errorf("marshaling run summary: %v", err)
		return
	}
	fmt.Println("=== Simulation Metrics ===")
	fmt.Println(string(data))
}
