package catalog_test

import (
	"testing"

	"github.com/meeplehaven/boardshelf/catalog"
	"github.com/meeplehaven/boardshelf/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catanFields() catalog.Fields {
	return catalog.Fields{
		Name:       "Catan",
		ImgURL:     "https://example.com/catan.jpg",
		Year:       1995,
		Level:      2,
		MinPlayers: 3,
		MaxPlayers: 4,
		PlayTime:   "90 min",
		Rating:     5,
	}
}

func TestAdd_ThenListOwn(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	f := catanFields()
	_, err := svc.Add(1, f)
	require.NoError(t, err)

	games, err := svc.ListOwn(1)
	require.NoError(t, err)
	require.Len(t, games, 1)

	g := games[0]
	assert.Equal(t, int64(1), g.OwnerID)
	assert.Equal(t, f.Name, g.Name)
	assert.Equal(t, f.ImgURL, g.ImgURL)
	assert.Equal(t, f.Year, g.Year)
	assert.Equal(t, f.Level, g.Level)
	assert.Equal(t, f.MinPlayers, g.MinPlayers)
	assert.Equal(t, f.MaxPlayers, g.MaxPlayers)
	assert.Equal(t, f.PlayTime, g.PlayTime)
	assert.Equal(t, f.Rating, g.Rating)
}

func TestListOwn_SortedByRatingDesc(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	_, err := svc.Add(1, catalog.Fields{Name: "Catan", Rating: 5})
	require.NoError(t, err)
	_, err = svc.Add(1, catalog.Fields{Name: "Go", Rating: 8})
	require.NoError(t, err)

	games, err := svc.ListOwn(1)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Go", games[0].Name)
	assert.Equal(t, "Catan", games[1].Name)
}

func TestListOwn_StableForEqualRatings(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := svc.Add(1, catalog.Fields{Name: name, Rating: 7})
		require.NoError(t, err)
	}

	games, err := svc.ListOwn(1)
	require.NoError(t, err)
	require.Len(t, games, 3)
	// Ties keep insertion order.
	assert.Equal(t, "First", games[0].Name)
	assert.Equal(t, "Second", games[1].Name)
	assert.Equal(t, "Third", games[2].Name)
}

func TestListOwn_ScopedToOwner(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	_, err := svc.Add(1, catalog.Fields{Name: "Mine", Rating: 3})
	require.NoError(t, err)
	_, err = svc.Add(2, catalog.Fields{Name: "Theirs", Rating: 9})
	require.NoError(t, err)

	games, err := svc.ListOwn(1)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Mine", games[0].Name)
}

func TestGet_WrongOwner(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	game, err := svc.Add(1, catanFields())
	require.NoError(t, err)

	_, err = svc.Get(2, game.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	got, err := svc.Get(1, game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)
}

func TestEdit_FullReplace(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	game, err := svc.Add(1, catanFields())
	require.NoError(t, err)

	// Every mutable field is overwritten, including zero values.
	err = svc.Edit(1, game.ID, catalog.Fields{Name: "Catan (2nd ed.)", Rating: 0})
	require.NoError(t, err)

	got, err := svc.Get(1, game.ID)
	require.NoError(t, err)
	assert.Equal(t, "Catan (2nd ed.)", got.Name)
	assert.Equal(t, 0, got.Rating)
	assert.Equal(t, 0, got.Year)
	assert.Equal(t, "", got.ImgURL)
	assert.Equal(t, int64(1), got.OwnerID, "ownership never transfers")
}

func TestEdit_NotFound(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	err := svc.Edit(1, 12345, catanFields())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestEdit_WrongOwner(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	game, err := svc.Add(1, catanFields())
	require.NoError(t, err)

	err = svc.Edit(2, game.ID, catalog.Fields{Name: "Hijacked"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	got, _ := svc.Get(1, game.ID)
	assert.Equal(t, "Catan", got.Name)
}

func TestDelete(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	game, err := svc.Add(1, catanFields())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(1, game.ID))

	games, err := svc.ListOwn(1)
	require.NoError(t, err)
	assert.Empty(t, games)

	assert.ErrorIs(t, svc.Delete(1, game.ID), catalog.ErrNotFound)
}

func TestDelete_WrongOwner(t *testing.T) {
	svc := catalog.New(testutil.SetupTestDB(t))

	game, err := svc.Add(1, catanFields())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(2, game.ID), catalog.ErrNotFound)

	games, _ := svc.ListOwn(1)
	assert.Len(t, games, 1)
}
