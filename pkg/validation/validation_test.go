package validation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidItemFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{name: "minimal record", doc: `{"boardId": 3}`, want: true},
		{name: "full record", doc: `{"name":"lefty","channel":0,"boardId":3,"pedals":[]}`, want: true},
		{name: "float board id", doc: `{"boardId": 1.5}`, want: true},
		{name: "negative board id", doc: `{"boardId": -1}`, want: true},
		{name: "missing board id", doc: `{"name":"lefty"}`, want: false},
		{name: "string board id", doc: `{"boardId":"3"}`, want: false},
		{name: "null board id", doc: `{"boardId":null}`, want: false},
		{name: "null", doc: `null`, want: false},
		{name: "array", doc: `[{"boardId":3}]`, want: false},
		{name: "number", doc: `3`, want: false},
		{name: "not json", doc: `{boardId: 3`, want: false},
		{name: "empty", doc: ``, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidItemFields([]byte(tt.doc)))
		})
	}
}

func TestIsValidItems(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{name: "empty array", doc: `[]`, want: true},
		{name: "two records", doc: `[{"boardId":1,"name":"a"},{"boardId":2,"name":"b"}]`, want: true},
		{name: "same board id twice", doc: `[{"boardId":1,"name":"a"},{"boardId":1,"name":"b"}]`, want: true},
		{name: "one invalid record", doc: `[{"boardId":1},{"name":"b"}]`, want: false},
		{name: "null element", doc: `[{"boardId":1},null]`, want: false},
		{name: "object", doc: `{"boardId":1}`, want: false},
		{name: "null", doc: `null`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidItems([]byte(tt.doc)))
		})
	}
}

func TestDecodeItem(t *testing.T) {
	item, err := DecodeItem([]byte(`{"name":"lefty","channel":0,"boardId":3,"pedals":[{"index":0,"name":"delay","settings":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "lefty", item.Name)
	assert.Equal(t, 3, item.BoardID)
	require.Len(t, item.Pedals, 1)
	assert.Equal(t, "delay", item.Pedals[0].Name)

	_, err = DecodeItem([]byte(`{"name":"lefty"}`))
	assert.Error(t, err)
}

func TestGuardConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, IsValidItems([]byte(`[{"boardId":1}]`)))
			assert.False(t, IsValidItemFields([]byte(`{}`)))
		}()
	}
	wg.Wait()
}
