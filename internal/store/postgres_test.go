package store

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campsiteCols = []string{"id", "name", "type", "state", "address", "latitude", "longitude",
	"forest_type", "opening_hours", "fees", "tags", "image_url"}

func TestListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(campsiteCols).
		AddRow(1, "Sungai Chiling", "forest reserve", "Selangor", "Kuala Kubu Bharu",
			3.58, 101.73, "rainforest", "8am-6pm", "Free admission", "river, waterfall", "/img/chiling.jpg").
		AddRow(2, "Gunung Ledang", "national park", "Johor", "Tangkak",
			nil, nil, "montane", "24 hours", "RM5 entry", "wildlife, waterfall", "/img/ledang.jpg")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + campsiteColumns + " FROM campsites ORDER BY id")).
		WillReturnRows(rows)

	s := NewPostgresStore(db)
	sites, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "Sungai Chiling", sites[0].Name)
	assert.True(t, sites[0].HasCoordinates())
	assert.False(t, sites[1].HasCoordinates())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_AllPredicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	want := "SELECT " + campsiteColumns + " FROM campsites" +
		" WHERE LOWER(state) = LOWER($1)" +
		" AND (LOWER(tags) LIKE $2)" +
		" AND LOWER(fees) LIKE $3" +
		" ORDER BY id LIMIT $4"
	rows := sqlmock.NewRows(campsiteCols).
		AddRow(3, "Lata Berkoh", "park", "Pahang", "Jerantut",
			4.4, 102.4, "rainforest", "8am-7pm", "Free admission", "river, waterfall", "/img/berkoh.jpg")
	mock.ExpectQuery(regexp.QuoteMeta(want)).
		WithArgs("Pahang", "%waterfall%", "%free admission%", 5).
		WillReturnRows(rows)

	s := NewPostgresStore(db)
	sites, err := s.Search(context.Background(), Filter{
		State:       "Pahang",
		Attractions: []string{"waterfall"},
		FreeOnly:    true,
	}, 5)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Lata Berkoh", sites[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_AttractionCombinators(t *testing.T) {
	tests := []struct {
		name       string
		combineAnd bool
		wantOp     string
	}{
		{name: "or", combineAnd: false, wantOp: " OR "},
		{name: "and", combineAnd: true, wantOp: " AND "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			want := "SELECT " + campsiteColumns + " FROM campsites" +
				" WHERE (LOWER(tags) LIKE $1" + tc.wantOp + "LOWER(tags) LIKE $2)" +
				" ORDER BY id LIMIT $3"
			mock.ExpectQuery(regexp.QuoteMeta(want)).
				WithArgs("%beach%", "%cave%", 5).
				WillReturnRows(sqlmock.NewRows(campsiteCols))

			s := NewPostgresStore(db)
			_, err = s.Search(context.Background(), Filter{
				Attractions: []string{"beach", "cave"},
				CombineAnd:  tc.combineAnd,
			}, 5)
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSearch_NoPredicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	want := "SELECT " + campsiteColumns + " FROM campsites ORDER BY id LIMIT $1"
	mock.ExpectQuery(regexp.QuoteMeta(want)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(campsiteCols))

	s := NewPostgresStore(db)
	sites, err := s.Search(context.Background(), Filter{}, 5)
	require.NoError(t, err)
	assert.Empty(t, sites)
	assert.NoError(t, mock.ExpectationsWereMet())
}
