package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/roach88/numberdesk/internal/record"
)

func owners(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record.Owner
	}
	return out
}

func TestSortUnsetKeepsOrder(t *testing.T) {
	rows := Rows(sampleRecords())
	sorted := Sort(rows, SortKey{}, language.English)
	assert.Equal(t, rows, sorted)
}

func TestSortIsLocaleAware(t *testing.T) {
	rows := Rows([]record.Record{
		{Owner: "banana"},
		{Owner: "Cherry"},
		{Owner: "apple"},
		{Owner: "Banana"},
	})

	asc := Sort(rows, SortKey{Field: record.FieldOwner, Direction: Asc}, language.English)
	// Byte order would put every capitalized name first.
	assert.Equal(t, "apple", asc[0].Record.Owner)
	assert.Equal(t, "Cherry", asc[3].Record.Owner)

	desc := Sort(rows, SortKey{Field: record.FieldOwner, Direction: Desc}, language.English)
	assert.Equal(t, "Cherry", desc[0].Record.Owner)
	assert.Equal(t, "apple", desc[3].Record.Owner)
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	records := []record.Record{
		{Category: "Gold", Owner: "first"},
		{Category: "Silver", Owner: "s1"},
		{Category: "Gold", Owner: "second"},
		{Category: "Bronze", Owner: "b1"},
		{Category: "Gold", Owner: "third"},
		{Category: "Silver", Owner: "s2"},
	}
	rows := Rows(records)

	asc := Sort(rows, SortKey{Field: record.FieldCategory, Direction: Asc}, language.English)
	assert.Equal(t, []string{"b1", "first", "second", "third", "s1", "s2"}, owners(asc))

	desc := Sort(rows, SortKey{Field: record.FieldCategory, Direction: Desc}, language.English)
	assert.Equal(t, []string{"s1", "s2", "first", "second", "third", "b1"}, owners(desc))
}

func TestSortUsesStoredMSISDN(t *testing.T) {
	rows := Rows([]record.Record{
		{MSISDN: "971501234567", Owner: "prefixed"},
		{MSISDN: "0521114567", Owner: "local"},
	})

	asc := Sort(rows, SortKey{Field: record.FieldMSISDN, Direction: Asc}, language.English)
	assert.Equal(t, []string{"local", "prefixed"}, owners(asc))
	assert.Equal(t, []int{1, 0}, indices(asc))
}

func TestSortDoesNotReorderInput(t *testing.T) {
	rows := Rows([]record.Record{{Owner: "b"}, {Owner: "a"}})
	Sort(rows, SortKey{Field: record.FieldOwner, Direction: Asc}, language.English)
	assert.Equal(t, []string{"b", "a"}, owners(rows))
}

func TestSortKeyToggle(t *testing.T) {
	var k SortKey
	assert.False(t, k.IsSet())

	k = k.Toggle(record.FieldOwner)
	assert.Equal(t, SortKey{Field: record.FieldOwner, Direction: Asc}, k)

	k = k.Toggle(record.FieldOwner)
	assert.Equal(t, SortKey{Field: record.FieldOwner, Direction: Desc}, k)

	k = k.Toggle(record.FieldOwner)
	assert.Equal(t, Asc, k.Direction)

	k = k.Toggle(record.FieldOwner).Toggle(record.FieldDate)
	assert.Equal(t, SortKey{Field: record.FieldDate, Direction: Asc}, k)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	assert.NoError(t, err)
	assert.Equal(t, Asc, d)

	d, err = ParseDirection("desc")
	assert.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("down")
	assert.Error(t, err)
}
