package kpi

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type kpiKey int

const (
	kpiVerifiedHours kpiKey = iota
	kpiActiveStudents
	kpiActivePrograms
	kpiRetentionRate
)

// deltaRule renders one KPI's delta. compare is used when the term has a
// prior term to compare against; restate otherwise.
type deltaRule struct {
	compare func(cur, prev termTotals) string
	restate func(cur termTotals) string
}

func (r deltaRule) render(cur termTotals, prev *termTotals) string {
	if prev == nil {
		return r.restate(cur)
	}
	return r.compare(cur, *prev)
}

var deltaRules = map[kpiKey]deltaRule{
	kpiVerifiedHours: {
		compare: func(cur, prev termTotals) string {
			return fmt.Sprintf("%s vs %s", pctChange(cur.verifiedHours, prev.verifiedHours), prev.term.Name)
		},
		restate: func(cur termTotals) string {
			return fmt.Sprintf("%s verified hours", cur.verifiedHours.Round(1).String())
		},
	},
	kpiActiveStudents: {
		compare: func(cur, prev termTotals) string {
			return fmt.Sprintf("%s vs %s", pctChange(decimal.NewFromInt(int64(cur.activeStudents)), decimal.NewFromInt(int64(prev.activeStudents))), prev.term.Name)
		},
		restate: func(cur termTotals) string {
			return fmt.Sprintf("%d active students", cur.activeStudents)
		},
	},
	kpiActivePrograms: {
		compare: func(cur, prev termTotals) string {
			return fmt.Sprintf("%+d vs %s", cur.activePrograms-prev.activePrograms, prev.term.Name)
		},
		restate: func(cur termTotals) string {
			return fmt.Sprintf("%d programs", cur.activePrograms)
		},
	},
	kpiRetentionRate: {
		compare: func(cur, prev termTotals) string {
			return fmt.Sprintf("%+d pts vs %s", cur.retention-prev.retention, prev.term.Name)
		},
		restate: func(cur termTotals) string {
			return fmt.Sprintf("%d%% retained", cur.retention)
		},
	},
}

// pctChange formats the rounded percentage change from prev to cur.
// A zero baseline reports +0%.
func pctChange(cur, prev decimal.Decimal) string {
	if prev.IsZero() {
		return "+0%"
	}
	change := cur.Sub(prev).Mul(decimal.NewFromInt(100)).Div(prev).InexactFloat64()
	return fmt.Sprintf("%+d%%", int(math.Round(change)))
}
