package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/cuemby/fxboard/pkg/types"
)

//go:embed schema.cue
var schemaSource []byte

// guard holds the compiled schema. A cue.Context is not safe for concurrent
// use, so every evaluation runs under mu.
type guard struct {
	mu    sync.Mutex
	ctx   *cue.Context
	item  cue.Value
	items cue.Value
}

var (
	defaultGuard *guard
	initOnce     sync.Once
	initErr      error
)

func loadGuard() (*guard, error) {
	initOnce.Do(func() {
		ctx := cuecontext.New()
		schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			initErr = fmt.Errorf("failed to compile board schema: %w", err)
			return
		}
		defaultGuard = &guard{
			ctx:   ctx,
			item:  schema.LookupPath(cue.ParsePath("#Item")),
			items: schema.LookupPath(cue.ParsePath("#Items")),
		}
	})
	return defaultGuard, initErr
}

func (g *guard) check(def cue.Value, doc []byte) error {
	expr, err := cuejson.Extract("board.json", doc)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return err
	}
	return def.Unify(v).Validate(cue.Concrete(true))
}

// CheckItem reports why doc is not a valid board record, or nil
func CheckItem(doc []byte) error {
	g, err := loadGuard()
	if err != nil {
		return err
	}
	return g.check(g.item, doc)
}

// CheckItems reports why doc is not a valid board collection, or nil
func CheckItems(doc []byte) error {
	g, err := loadGuard()
	if err != nil {
		return err
	}
	return g.check(g.items, doc)
}

// IsValidItemFields reports whether doc is a non-null JSON object carrying a
// numeric boardId.
func IsValidItemFields(doc []byte) bool {
	return CheckItem(doc) == nil
}

// IsValidItems reports whether doc is a JSON array whose every element passes
// IsValidItemFields. An empty array is valid.
func IsValidItems(doc []byte) bool {
	return CheckItems(doc) == nil
}

// DecodeItem validates doc and decodes it into a SavedBoard
func DecodeItem(doc []byte) (types.SavedBoard, error) {
	var item types.SavedBoard
	if err := CheckItem(doc); err != nil {
		return item, fmt.Errorf("invalid board record: %w", err)
	}
	if err := json.Unmarshal(doc, &item); err != nil {
		return item, fmt.Errorf("failed to decode board record: %w", err)
	}
	return item, nil
}
