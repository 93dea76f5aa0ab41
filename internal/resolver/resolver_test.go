package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/league-analyst/internal/model"
)

func testRegistry() *model.Registry {
	return model.NewRegistry([]model.Entity{
		{ID: "1", Kind: model.EntityTeam, Name: "The Jaxon 5", Aliases: []string{"jaxon5"}},
		{ID: "2", Kind: model.EntityTeam, Name: "Field Goal Fanatics"},
		{ID: "3", Kind: model.EntityTeam, Name: "Waiver Wire Wizards"},
		{ID: "4", Kind: model.EntityOwner, Name: "nickroachy"},
		{ID: "5", Kind: model.EntityOwner, Name: "blake_s"},
		{ID: "6", Kind: model.EntityPlayer, Name: "AJ Brown", Position: "WR", ProTeam: "PHI"},
		{ID: "7", Kind: model.EntityPlayer, Name: "Antonio Brown", Position: "WR"},
	})
}

func TestResolve_ExactNameScores100(t *testing.T) {
	r := New(testRegistry())

	cands, err := r.Resolve(model.EntityTeam, "The Jaxon 5")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "1", cands[0].Entity.ID)
	assert.Equal(t, 100, cands[0].Score)

	// Case-insensitive.
	cands, err = r.Resolve(model.EntityTeam, "the jaxon 5")
	require.NoError(t, err)
	assert.Equal(t, 100, cands[0].Score)
}

func TestResolve_TypoResolvesToSoleCandidate(t *testing.T) {
	r := New(testRegistry())

	cands, err := r.Resolve(model.EntityTeam, "Jaxson 5")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "The Jaxon 5", cands[0].Entity.Name)
}

func TestResolve_PartialNameResolves(t *testing.T) {
	r := New(testRegistry())

	cands, err := r.Resolve(model.EntityTeam, "Jaxon")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "The Jaxon 5", cands[0].Entity.Name)
	assert.GreaterOrEqual(t, cands[0].Score, 80)
}

func TestResolve_TrailingPossessiveMatchesBareName(t *testing.T) {
	r := New(testRegistry())

	bare, err := r.Resolve(model.EntityOwner, "nickroachy")
	require.NoError(t, err)
	poss, err := r.Resolve(model.EntityOwner, "nickroachys")
	require.NoError(t, err)

	require.Len(t, poss, 1)
	assert.Equal(t, bare[0].Entity.ID, poss[0].Entity.ID)
	assert.GreaterOrEqual(t, poss[0].Score, 80)
}

func TestResolve_AmbiguousReturnsTopThree(t *testing.T) {
	reg := model.NewRegistry([]model.Entity{
		{ID: "1", Kind: model.EntityPlayer, Name: "Mike Evans"},
		{ID: "2", Kind: model.EntityPlayer, Name: "Mike Williams"},
		{ID: "3", Kind: model.EntityPlayer, Name: "Mike Gesicki"},
		{ID: "4", Kind: model.EntityPlayer, Name: "Mike Davis"},
	})
	r := New(reg)

	cands, err := r.Resolve(model.EntityPlayer, "Mike")
	require.NoError(t, err)
	assert.Len(t, cands, 3)
	for _, c := range cands {
		assert.Equal(t, cands[0].Score, c.Score)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := New(testRegistry())

	first, err := r.Resolve(model.EntityPlayer, "Brown")
	require.NoError(t, err)
	second, err := r.Resolve(model.EntityPlayer, "Brown")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_NotFound(t *testing.T) {
	r := New(testRegistry())

	_, err := r.Resolve(model.EntityTeam, "zzzzqqqq")
	require.Error(t, err)
	assert.True(t, model.IsResolutionNotFound(err))

	var nf *model.ResolutionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, model.EntityTeam, nf.Kind)
	assert.Equal(t, "zzzzqqqq", nf.Text)
}

func TestResolve_EmptyTextErrors(t *testing.T) {
	r := New(testRegistry())
	_, err := r.Resolve(model.EntityTeam, "   ")
	require.Error(t, err)
	assert.False(t, model.IsResolutionNotFound(err))
}

func TestResolve_AliasMatches(t *testing.T) {
	r := New(testRegistry())

	cands, err := r.Resolve(model.EntityTeam, "jaxon5")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "1", cands[0].Entity.ID)
	assert.Equal(t, 100, cands[0].Score)
}

func TestResolve_DiacriticsFolded(t *testing.T) {
	reg := model.NewRegistry([]model.Entity{
		{ID: "1", Kind: model.EntityPlayer, Name: "José Ramírez"},
	})
	r := New(reg)

	cands, err := r.Resolve(model.EntityPlayer, "jose ramirez")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 100, cands[0].Score)
}

func TestResolve_UnrelatedNameIsNotFound(t *testing.T) {
	// A player name shares most of its alphabet with "Field Goal
	// Fanatics"; only sequence-aware similarity keeps them apart.
	r := New(testRegistry())

	_, err := r.Resolve(model.EntityTeam, "justin jefferson")
	require.Error(t, err)
	assert.True(t, model.IsResolutionNotFound(err))
}

func TestResolve_TransposedTypoStillMatches(t *testing.T) {
	r := New(testRegistry())

	cands, err := r.Resolve(model.EntityOwner, "nikcroachy")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "nickroachy", cands[0].Entity.Name)
}

func TestProbeKind_PicksBestScoringKind(t *testing.T) {
	reg := model.NewRegistry([]model.Entity{
		{ID: "1", Kind: model.EntityTeam, Name: "Field Goal Fanatics"},
		{ID: "2", Kind: model.EntityPlayer, Name: "Justin Jefferson"},
	})
	r := New(reg)

	kind, ok := r.ProbeKind("justin jefferson", model.EntityTeam, model.EntityPlayer)
	require.True(t, ok)
	assert.Equal(t, model.EntityPlayer, kind)

	kind, ok = r.ProbeKind("field goal fanatics", model.EntityPlayer, model.EntityTeam)
	require.True(t, ok)
	assert.Equal(t, model.EntityTeam, kind)
}

func TestProbeKind_NoMatchReportsFalse(t *testing.T) {
	r := New(testRegistry())

	_, ok := r.ProbeKind("zzzzqqqq", model.EntityTeam, model.EntityPlayer, model.EntityOwner)
	assert.False(t, ok)
}

func TestScore_UnrelatedNamesScoreZero(t *testing.T) {
	assert.Equal(t, 0, score("Field Goal Fanatics", "justin jefferson"))
}

func TestScore_TokenOverlapCapped(t *testing.T) {
	// Five shared tokens would be 75 uncapped; the tier caps at 70 so it
	// never outranks a contains match.
	s := score("alpha bravo charlie delta echo foxtrot", "alpha bravo charlie delta echo xyz")
	assert.Equal(t, 70, s)
}
