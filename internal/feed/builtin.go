// Package feed defines the supported pricing feeds and the registry that
// resolves a feed name to its immutable descriptor.
package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

type builtinFeed struct {
	name     string
	category string
	hour     int
	minute   int
	checks   types.Checks
}

// Built-in feeds. The APX-PRICELOAD load marks a feed as priced; earlier
// stages (FTP download, load to the pricing database) only show progress.
var builtinFeeds = []builtinFeed{
	{
		name:     "FTSE",
		category: "Canadian Bonds",
		hour:     14,
		minute:   15,
		checks: types.Checks{
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP-FTSETMX_PX", RunNames: []string{"FQCOUPON", "FQFRN", "FQMBS", "FQMBSF", "SCMHPDOM", "SMIQUOTE"}},
				{RunGroup: "FTSETMX_PX", RunNames: []string{"FQCOUPON", "FQFRN", "FQMBS", "FQMBSF", "SCMHPDOM", "SMIQUOTE"}},
				{RunGroup: "FTSETMX_PX", RunNames: []string{"PostProcess"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"BOND_FTSETMX"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"BOND_FTSETMX"}},
			},
		},
	},
	{
		name:     "MARKIT",
		category: "American Bonds",
		hour:     13,
		minute:   30,
		checks: types.Checks{
			Pending: []types.CheckGroup{
				{RunGroup: "MARKIT_PRICE", RunNames: []string{"ISINS_SEND"}},
			},
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP-MARKIT", RunNames: []string{"LeithWheeler_Nxxxx_Standard"}},
				{RunGroup: "MARKIT_PRICE", RunNames: []string{"MARKIT_PRICE"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"MARKIT_PRICE"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"MARKIT_PRICE"}},
			},
		},
	},
	{
		name:     "MARKIT_LOAN",
		category: "American Loans",
		hour:     14,
		minute:   0,
		checks: types.Checks{
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP-MARKIT_LOAN", RunNames: []string{
					"MARKIT_LOAN_ACCRUED", "MARKIT_LOAN_CASH", "MARKIT_LOAN_CASH_30D",
					"MARKIT_LOAN_CONTRACT", "MARKIT_LOAN_POSITION", "MARKIT_LOAN_SECURITY",
				}},
				{RunGroup: "MARKIT_LOAN", RunNames: []string{"MARKIT_LOAN_PRICE"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"MARKIT_LOAN_PRICE"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"MARKIT_LOAN_PRICE"}},
			},
		},
	},
	{
		name:     "FUNDRUN",
		category: "All Equities (except Latin America)",
		hour:     13,
		minute:   45,
		checks: types.Checks{
			Pending: []types.CheckGroup{
				{RunGroup: "FUNDRUN", RunNames: []string{"EQUITY_UPLOAD"}},
			},
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP-FUNDRUN_PRICE_EQ", RunNames: []string{"FUNDRUN_PRICE_EQ"}},
				{RunGroup: "FUNDRUN", RunNames: []string{"EQUITY_PRICE_MAIN"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"EQUITY_FUNDRUN_MAIN"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"EQUITY_FUNDRUN_MAIN"}},
			},
		},
	},
	{
		name:     "FUNDRUN_LATAM",
		category: "Latin America Equities",
		hour:     14,
		minute:   0,
		checks: types.Checks{
			Pending: []types.CheckGroup{
				{RunGroup: "FUNDRUN", RunNames: []string{"EQUITY_UPLOAD"}},
			},
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP-FUNDRUN_PRICE_EQ_LATAM", RunNames: []string{"FUNDRUN_PRICE_EQ_LATAM"}},
				{RunGroup: "FUNDRUN", RunNames: []string{"EQUITY_PRICE_LATAM"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"EQUITY_FUNDRUN_LATAM"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"EQUITY_FUNDRUN_LATAM"}},
			},
		},
	},
	{
		name:     "BLOOMBERG",
		category: "All Instruments",
		hour:     14,
		minute:   30,
		checks: types.Checks{
			InProgress: []types.CheckGroup{
				{RunGroup: "BB-SNAP", RunNames: []string{"BOND_PRICE", "MBS_PRICE"}},
				{RunGroup: "LOADPRICE_FI", RunNames: []string{"BOND_PRICE", "MBS_PRICE"}},
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"BOND_BB"}},
			},
			Completion: []types.CheckGroup{
				{RunGroup: "APX-PRICELOAD", RunNames: []string{"BOND_BB"}},
			},
		},
	},
}

// Builtin returns a registry holding every built-in feed, with deadlines
// expressed in loc. A nil loc means time.Local.
func Builtin(loc *time.Location) *Registry {
	r := NewRegistry(loc)
	for _, b := range builtinFeeds {
		_ = r.Register(types.Descriptor{
			Name:        b.name,
			Category:    b.category,
			Checks:      b.checks,
			ETA:         fmt.Sprintf("%02d:%02d", b.hour, b.minute),
			ExpectedETA: DailyAt(b.hour, b.minute, r.loc),
		})
	}
	return r
}

var localRegistry = sync.OnceValue(func() *Registry { return Builtin(time.Local) })

// Lookup returns the built-in descriptor for name, or an error wrapping
// ErrUnsupportedFeed. Its deadline is in time.Local; callers with a
// configured timezone resolve feeds through Builtin(loc) or config.Feeds.
func Lookup(name string) (types.Descriptor, error) {
	return localRegistry().Get(name)
}

// Names lists the built-in feeds in declaration order.
func Names() []string {
	return localRegistry().Names()
}
