package watchlist

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/gate-boarding/internal/model"
)

func entry(full string) model.WatchlistEntry {
    surname, first := Decompose(full)
    return model.WatchlistEntry{FullName: full, Surname: surname, FirstToken: first}
}

func TestDecompose(t *testing.T) {
    s, f := Decompose("SMITH JOHN")
    assert.Equal(t, "SMITH", s)
    assert.Equal(t, "JOHN", f)

    s, f = Decompose("SMITH")
    assert.Equal(t, "SMITH", s)
    assert.Empty(t, f)

    s, f = Decompose("")
    assert.Empty(t, s)
    assert.Empty(t, f)
}

func TestMatch(t *testing.T) {
    entries := []model.WatchlistEntry{
        entry("SMITH JOHN"),
        entry("DOE JANE MARIE"),
        entry("SINGLETON"),
    }

    cases := []struct {
        name      string
        candidate string
        want      bool
    }{
        {"exact", "SMITH JOHN", true},
        {"order swapped", "JOHN SMITH", true},
        {"extra middle tokens ignored", "SMITH JOHN ALBERT", true},
        {"swapped with middle token", "JANE DOE", true},
        {"surname only no match", "SMITH", false},
        {"single token exact", "SINGLETON", true},
        {"unrelated", "BROWN DAVID", false},
        {"partial surname", "SMITHE JOHN", false},
        {"empty", "", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, Match(tc.candidate, entries))
        })
    }
}

// The order-swap tolerance must hold in both directions.
func TestMatchSymmetry(t *testing.T) {
    assert.True(t, Match("JOHN SMITH", []model.WatchlistEntry{entry("SMITH JOHN")}))
    assert.True(t, Match("SMITH JOHN", []model.WatchlistEntry{entry("JOHN SMITH")}))
}

func TestMatchEmptyList(t *testing.T) {
    assert.False(t, Match("SMITH JOHN", nil))
}
