package outfits

import (
	"sync"
	"time"
)

const (
	defaultMaxRecent         = 10
	defaultRotationThreshold = 0.3
	seasonalBoostFactor      = 1.5
	newItemBoostFactor       = 2.0
)

var seasonalTags = []string{"seasonal", "trendy"}
var newItemTags = []string{"new", "recent", "latest"}

// Tracker suppresses over-repeated combinations and boosts fresh ones. One
// instance per user, held by the orchestrating layer; state is never
// persisted across restarts.
//
// The rotation threshold compares the signature's share of all admissions so
// far against a 0..1 ratio. The upstream implementation compared a raw
// integer counter to 0.3, which rejects every repeat after the first, so the
// threshold is kept configurable here and interpreted as a normalized
// frequency instead.
type Tracker struct {
	mu                sync.Mutex
	recent            []string
	frequency         map[string]int
	admissions        int
	maxRecent         int
	rotationThreshold float64
	lastGeneratedAt   time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		frequency:         map[string]int{},
		maxRecent:         defaultMaxRecent,
		rotationThreshold: defaultRotationThreshold,
	}
}

// NewTrackerWithThreshold is for callers that tune rotation behavior.
func NewTrackerWithThreshold(maxRecent int, threshold float64) *Tracker {
	t := NewTracker()
	if maxRecent > 0 {
		t.maxRecent = maxRecent
	}
	if threshold > 0 {
		t.rotationThreshold = threshold
	}
	return t
}

// Admit decides whether a combination signature may be emitted. Accepted
// when its normalized frequency is still under the rotation threshold, or
// when it has rotated out of the bounded recent-history list. Admission
// mutates the tracker.
func (t *Tracker) Admit(signature string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	inRecent := false
	for _, s := range t.recent {
		if s == signature {
			inRecent = true
			break
		}
	}

	accepted := !inRecent
	if !accepted && t.admissions > 0 {
		normalized := float64(t.frequency[signature]) / float64(t.admissions)
		accepted = normalized < t.rotationThreshold
	}
	if !accepted {
		return false
	}

	t.frequency[signature]++
	t.admissions++
	t.recent = append(t.recent, signature)
	if len(t.recent) > t.maxRecent {
		t.recent = t.recent[1:]
	}
	t.lastGeneratedAt = time.Now()
	return true
}

// ApplyBoosts multiplies confidence for seasonal and new-item tags. Both
// boosts stack; 100 is the only ceiling.
func (t *Tracker) ApplyBoosts(combo *OutfitCombination, season Season) {
	confidence := float64(combo.Confidence)
	for _, item := range combo.Items {
		if item.HasTag(seasonalTags...) && (item.HasTag(string(season)) || containsSeason(item.Colors.Seasons, season)) {
			confidence *= seasonalBoostFactor
			break
		}
	}
	for _, item := range combo.Items {
		if item.HasTag(newItemTags...) {
			confidence *= newItemBoostFactor
			break
		}
	}
	combo.Confidence = clampConfidence(int(confidence))
}

// Reset clears history and frequency counts and stamps a new generation
// time. Used for test isolation and periodic cache busting.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = nil
	t.frequency = map[string]int{}
	t.admissions = 0
	t.lastGeneratedAt = time.Now()
}

func (t *Tracker) LastGeneratedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastGeneratedAt
}

// SeasonFromMonth derives the calendar season used for seasonal boosts when
// the weather collaborator does not supply one.
func SeasonFromMonth(month time.Month) Season {
	switch month {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
