package behavior

import (
	"sort"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// Default listing sizes.
const (
	DefaultFlowLimit = 100
	DefaultPageLimit = 10
)

// SessionFlow summarizes one visitor session. Duration is in milliseconds.
type SessionFlow struct {
	SessionID string   `json:"sessionId"`
	Pages     []string `json:"pages"`
	Duration  int64    `json:"duration"`
	Events    int      `json:"events"`
}

// PageViews pairs a page with its event count.
type PageViews struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

// PageExits pairs a page with the number of sessions that ended on it.
type PageExits struct {
	Page  string `json:"page"`
	Exits int    `json:"exits"`
}

type pageCount struct {
	page string
	n    int
}

type session struct {
	id     string
	events []model.BehaviorEvent
}

// group splits events by session, keeping sessions and events in arrival order.
func group(events []model.BehaviorEvent) []*session {
	index := make(map[string]*session)
	var out []*session
	for _, e := range events {
		s, ok := index[e.SessionID]
		if !ok {
			s = &session{id: e.SessionID}
			index[e.SessionID] = s
			out = append(out, s)
		}
		s.events = append(s.events, e)
	}
	return out
}

func (s *session) duration() time.Duration {
	if len(s.events) < 2 {
		return 0
	}
	return s.events[len(s.events)-1].Timestamp.Sub(s.events[0].Timestamp)
}

// SessionFlows returns the longest sessions first, at most limit of them.
// Events must be in arrival order.
func SessionFlows(events []model.BehaviorEvent, limit int) []SessionFlow {
	if limit <= 0 {
		limit = DefaultFlowLimit
	}
	sessions := group(events)
	flows := make([]SessionFlow, 0, len(sessions))
	for _, s := range sessions {
		pages := []string{}
		seen := make(map[string]struct{})
		for _, e := range s.events {
			if e.PageURL == "" {
				continue
			}
			if _, dup := seen[e.PageURL]; dup {
				continue
			}
			seen[e.PageURL] = struct{}{}
			pages = append(pages, e.PageURL)
		}
		flows = append(flows, SessionFlow{
			SessionID: s.id,
			Pages:     pages,
			Duration:  s.duration().Milliseconds(),
			Events:    len(s.events),
		})
	}
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Duration > flows[j].Duration })
	if len(flows) > limit {
		flows = flows[:limit]
	}
	return flows
}

// UniqueSessions counts distinct session ids.
func UniqueSessions(events []model.BehaviorEvent) int {
	return len(group(events))
}

// BounceRate is the percentage of sessions with exactly one event.
func BounceRate(events []model.BehaviorEvent) float64 {
	sessions := group(events)
	if len(sessions) == 0 {
		return 0
	}
	bounced := 0
	for _, s := range sessions {
		if len(s.events) == 1 {
			bounced++
		}
	}
	return float64(bounced) / float64(len(sessions)) * 100
}

// AvgSessionDuration is the mean duration in milliseconds over sessions with
// more than one event.
func AvgSessionDuration(events []model.BehaviorEvent) float64 {
	var total time.Duration
	n := 0
	for _, s := range group(events) {
		if len(s.events) > 1 {
			total += s.duration()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(n)
}

// TopPages ranks page URLs by event count.
func TopPages(events []model.BehaviorEvent, limit int) []PageViews {
	counts := make(map[string]int)
	for _, e := range events {
		if e.PageURL != "" {
			counts[e.PageURL]++
		}
	}
	ranked := rank(counts, limit)
	out := make([]PageViews, len(ranked))
	for i, pc := range ranked {
		out[i] = PageViews{Page: pc.page, Views: pc.n}
	}
	return out
}

// ExitPages ranks page URLs by how many sessions ended on them.
func ExitPages(events []model.BehaviorEvent, limit int) []PageExits {
	counts := make(map[string]int)
	for _, s := range group(events) {
		last := s.events[0]
		for _, e := range s.events[1:] {
			if !e.Timestamp.Before(last.Timestamp) {
				last = e
			}
		}
		if last.PageURL != "" {
			counts[last.PageURL]++
		}
	}
	ranked := rank(counts, limit)
	out := make([]PageExits, len(ranked))
	for i, pc := range ranked {
		out[i] = PageExits{Page: pc.page, Exits: pc.n}
	}
	return out
}

// rank orders pages by count desc, then page asc, keeping at most limit.
func rank(counts map[string]int, limit int) []pageCount {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	out := make([]pageCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, pageCount{page: p, n: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].page < out[j].page
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
