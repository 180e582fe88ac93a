package modal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func describe(s State[item]) string {
	return Match(s, Cases[item, string]{
		Closed: func() string { return "closed" },
		Create: func() string { return "create" },
		Edit:   func(e item) string { return "edit " + string(rune('0'+e.ID)) },
		Delete: func(e item) string { return "delete " + string(rune('0'+e.ID)) },
	})
}

func TestMatch(t *testing.T) {
	tests := []struct {
		state State[item]
		want  string
	}{
		{State[item]{}, "closed"},
		{Closed[item](), "closed"},
		{Create[item](), "create"},
		{Edit(item{ID: 3}), "edit 3"},
		{Delete(item{ID: 5}), "delete 5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describe(tt.state))
	}
}

func TestMatchRequiresEveryCase(t *testing.T) {
	assert.Panics(t, func() {
		Match(Closed[item](), Cases[item, int]{Closed: func() int { return 0 }})
	})
}

func TestEntityOnlyForEditAndDelete(t *testing.T) {
	_, ok := Create[item]().Entity()
	assert.False(t, ok)
	_, ok = Closed[item]().Entity()
	assert.False(t, ok)

	e, ok := Edit(item{ID: 2}).Entity()
	assert.True(t, ok)
	assert.Equal(t, 2, e.ID)
}

func TestStateJSON(t *testing.T) {
	raw, err := json.Marshal(Delete(item{ID: 7}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"delete","entity":{"id":7}}`, string(raw))

	raw, err = json.Marshal(Closed[item]())
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"closed","entity":null}`, string(raw))

	var s State[item]
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"edit","entity":{"id":1}}`), &s))
	assert.Equal(t, Edit(item{ID: 1}), s)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"edit"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"maybe"}`), &s))
}
