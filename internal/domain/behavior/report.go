package behavior

import "github.com/okian/scorecard/internal/domain/model"

// Report types.
const (
	ReportHeatmap  = "heatmap"
	ReportBehavior = "behavior"
	ReportOverview = "overview"
)

// HeatmapReport holds click and movement grids with per-type totals.
type HeatmapReport struct {
	Clicks         []Cell `json:"clicks"`
	Movements      []Cell `json:"movements"`
	TotalClicks    int    `json:"totalClicks"`
	TotalMovements int    `json:"totalMovements"`
	TotalScrolls   int    `json:"totalScrolls"`
}

// FlowReport describes how visitors move through the site.
type FlowReport struct {
	SessionFlows       []SessionFlow `json:"sessionFlows"`
	TopPages           []PageViews   `json:"topPages"`
	ExitPages          []PageExits   `json:"exitPages"`
	AvgSessionDuration float64       `json:"avgSessionDuration"`
	TotalSessions      int           `json:"totalSessions"`
}

// Overview is the default engagement summary.
type Overview struct {
	TotalEvents    int         `json:"totalEvents"`
	UniqueSessions int         `json:"uniqueSessions"`
	TopPages       []PageViews `json:"topPages"`
	BounceRate     float64     `json:"bounceRate"`
	EngagementRate float64     `json:"engagementRate"`
}

// BuildHeatmap splits events by type and grids clicks and movements.
func BuildHeatmap(events []model.BehaviorEvent, gridSize int) HeatmapReport {
	clicks, moves, scrolls := Split(events)
	return HeatmapReport{
		Clicks:         Heatmap(clicks, gridSize),
		Movements:      Heatmap(moves, gridSize),
		TotalClicks:    len(clicks),
		TotalMovements: len(moves),
		TotalScrolls:   len(scrolls),
	}
}

// BuildFlows summarizes sessions. Events must be in arrival order.
func BuildFlows(events []model.BehaviorEvent, flowLimit int) FlowReport {
	return FlowReport{
		SessionFlows:       SessionFlows(events, flowLimit),
		TopPages:           TopPages(events, DefaultPageLimit),
		ExitPages:          ExitPages(events, DefaultPageLimit),
		AvgSessionDuration: AvgSessionDuration(events),
		TotalSessions:      UniqueSessions(events),
	}
}

// BuildOverview computes totals, bounce and engagement rates.
func BuildOverview(events []model.BehaviorEvent) Overview {
	bounce := BounceRate(events)
	return Overview{
		TotalEvents:    len(events),
		UniqueSessions: UniqueSessions(events),
		TopPages:       TopPages(events, DefaultPageLimit),
		BounceRate:     bounce,
		EngagementRate: 100 - bounce,
	}
}
