package preflight

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Reason weights. Every weight is non-negative so adding a reason never lowers the score.
const (
	WeightCorePackage    = 3
	WeightMajorBump      = 2
	WeightThirdParty     = 2
	WeightConfigConflict = 1
	WeightServiceRestart = 1
	WeightDependent      = 1
)

// Thresholds are the lowest scores of the medium and high buckets.
type Thresholds struct {
	Medium int
	High   int
}

// DefaultThresholds puts 0 in low, 1..4 in medium and 5 or more in high.
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 1, High: 5}
}

// Bucket maps a score to its risk level.
func Bucket(score int, t Thresholds) domain.RiskLevel {
	switch {
	case score >= t.High:
		return domain.RiskHigh
	case score >= t.Medium:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Rules are the configurable inputs of risk scoring.
type Rules struct {
	Thresholds   Thresholds
	CorePackages []string
}

// DefaultRules returns the default thresholds with the given core packages.
func DefaultRules(core []string) Rules {
	return Rules{Thresholds: DefaultThresholds(), CorePackages: core}
}

// Score computes the additive risk of a plan from its resolved sections.
func Score(plan *domain.Plan, rules Rules) domain.RiskScore {
	var reasons []domain.RiskReason
	add := func(code domain.RiskReasonCode, weight int, detail string) {
		reasons = append(reasons, domain.RiskReason{Code: code, Weight: weight, Detail: detail})
	}

	for _, it := range plan.Items {
		if slices.Contains(rules.CorePackages, it.Name) {
			add(domain.RiskCorePackage, WeightCorePackage, it.Name+" is a core system package")
		}
	}
	for _, it := range plan.Items {
		if it.Action != domain.ActionRemove && domain.IsMajorBump(it.FromVersion, it.ToVersion) {
			add(domain.RiskMajorBump, WeightMajorBump, fmt.Sprintf("%s %s → %s", it.Name, it.FromVersion, it.ToVersion))
		}
	}
	for _, it := range plan.Items {
		if it.Source == domain.SourceThirdParty {
			add(domain.RiskThirdParty, WeightThirdParty, it.Name+" is built from the AUR")
		}
	}
	for _, n := range plan.ReverseDependents() {
		add(domain.RiskDependent, WeightDependent, fmt.Sprintf("%s depends on %s", n.Name, strings.Join(n.RequiredBy, ", ")))
	}
	for _, f := range plan.Files {
		if !f.ConfigConflict {
			continue
		}
		verb := "installed"
		if f.Kind == domain.FileRemoved {
			verb = "saved"
		}
		add(domain.RiskConfigConflict, WeightConfigConflict, fmt.Sprintf("%s will be %s as %s", f.Path, verb, f.PredictedSave))
	}
	for _, s := range plan.Services {
		if s.RestartRequired {
			add(domain.RiskServiceRestart, WeightServiceRestart, s.Unit+" needs a restart")
		}
	}

	score := 0
	for _, r := range reasons {
		score += r.Weight
	}
	return domain.RiskScore{Score: score, Level: Bucket(score, rules.Thresholds), Reasons: reasons}
}
