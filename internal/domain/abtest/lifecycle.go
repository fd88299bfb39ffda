package abtest

import (
	"errors"
	"fmt"

	"github.com/okian/scorecard/internal/domain/model"
)

// Sentinel kinds for lifecycle violations.
var (
	ErrNotDraft     = errors.New("only draft tests can be started")
	ErrNotRunning   = errors.New("test is not running")
	ErrInvalidSplit = errors.New("traffic split must be between 1 and 99")
	ErrVariant      = errors.New("invalid variant")
)

// DefaultTrafficSplit is the share of visitors routed to variant B.
const DefaultTrafficSplit = 50

// CanStart allows DRAFT -> RUNNING.
func CanStart(t model.ABTest) error {
	if t.Status != model.ABTestDraft {
		return fmt.Errorf("start %s in state %s: %w", t.ID, t.Status, ErrNotDraft)
	}
	return nil
}

// CanTrack allows impressions and conversions on running tests only.
func CanTrack(t model.ABTest, variant string) error {
	if err := ValidVariant(variant); err != nil {
		return err
	}
	if t.Status != model.ABTestRunning {
		return fmt.Errorf("track %s in state %s: %w", t.ID, t.Status, ErrNotRunning)
	}
	return nil
}

// CanComplete allows RUNNING -> COMPLETED.
func CanComplete(t model.ABTest) error {
	if t.Status != model.ABTestRunning {
		return fmt.Errorf("complete %s in state %s: %w", t.ID, t.Status, ErrNotRunning)
	}
	return nil
}

// ValidVariant accepts "A" or "B".
func ValidVariant(v string) error {
	if v != model.VariantA && v != model.VariantB {
		return fmt.Errorf("%q: %w", v, ErrVariant)
	}
	return nil
}

// NormalizeSplit applies the default and rejects out of range splits.
func NormalizeSplit(split int) (int, error) {
	if split == 0 {
		return DefaultTrafficSplit, nil
	}
	if split < 1 || split > 99 {
		return 0, fmt.Errorf("%d: %w", split, ErrInvalidSplit)
	}
	return split, nil
}

// HasStats reports whether listings should render stats for the test.
func HasStats(t model.ABTest) bool {
	return t.Status == model.ABTestRunning || t.Status == model.ABTestCompleted
}
