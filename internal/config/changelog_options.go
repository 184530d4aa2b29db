package config

// EffectiveChangelogConfig resolves the (possibly legacy-aliased)
// ChangelogConfig into concrete defaulted values for the changelog engine.
type EffectiveChangelogConfig struct {
	IncludeCommitID    bool
	IncludeCommitBody  bool
	OnlyBreakingBody   bool
	IncludeScopes      bool
	IncludeDate        bool
	IncludeTypes       []string
	ExcludeTypes       []string
	WorkspaceChangelog bool
	Aggregate          []AggregateChangelog
}

// Effective resolves defaults: include_commit_id and include_scopes
// default true, workspace_changelog defaults true, everything else
// defaults false unless set.
func (c ChangelogConfig) Effective() EffectiveChangelogConfig {
	out := EffectiveChangelogConfig{
		IncludeCommitID:    boolOr(c.IncludeCommitID, true),
		IncludeCommitBody:  boolOr(c.IncludeCommitBody, false),
		OnlyBreakingBody:   boolOr(c.OnlyBreakingBody, false),
		IncludeScopes:      boolOr(c.IncludeScopes, true),
		IncludeDate:        boolOr(c.IncludeDate, false),
		WorkspaceChangelog: boolOr(c.WorkspaceChangelog, true),
		IncludeTypes:       c.IncludeTypes,
		ExcludeTypes:       c.ExcludeTypes,
		Aggregate:          c.Aggregate,
	}
	return out
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
