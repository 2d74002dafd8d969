/*
Package storage persists saved boards.

Two layers live here. A Medium is a raw key/value byte store; BoardStore sits
on top of one and owns the saved board collection.

	┌─────────────── BoardStore ───────────────┐
	│  GetItems / GetItem / SetItem / Clear     │
	│  validation.CheckItems on every read      │
	│  validation.CheckItem before every write  │
	└──────────────────┬───────────────────────┘
	                   │ key "pedalboards" → JSON array
	        ┌──────────┴──────────┐
	        ▼                     ▼
	  BoltMedium             RedisMedium
	  <dataDir>/fxboard.db   <prefix>:pedalboards
	  bucket "fxboard"

# Collection format

The collection is a single JSON array of SavedBoard objects:

	[{"channel":0,"boardId":3,"pedals":[],"name":"lefty"}]

Boards are keyed by name. Two boards may share a boardId; saving a board whose
name already exists replaces that entry where it stands.

# Failure policy

BoardStore never returns an error. A medium failure or a collection that
fails validation is logged as "an error occurred in board store", counted in
fxboard_store_operations_total{result="error"}, and reported as an empty
slice or false. One bad record empties the whole read; there are no partial
lists.

Medium failures also mark the "store" health component unhealthy until the
next successful operation.

# Usage

	medium, err := storage.NewBoltMedium("/var/lib/fxboard")
	if err != nil {
		return err
	}
	defer medium.Close()

	store := storage.NewBoardStore(medium)
	store.SetItem(types.SavedBoard{Name: "lefty", BoardData: board})
	for _, b := range store.GetItems() {
		fmt.Println(b.Name)
	}
*/
package storage
