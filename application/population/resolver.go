package population

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// Resolver populates documents according to a Plan.
type Resolver struct {
	store  ports.Store
	logger *zap.Logger
}

// NewResolver creates a resolver reading from store
func NewResolver(store ports.Store, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// pending is one reference field waiting to be substituted.
type pending struct {
	doc  abstractions.Document
	path Path
}

// Populate replaces the references in every document with the documents
// they point at, level by level. A reference whose target does not exist is
// replaced by nil (or a nil list element) and never fails the call. Each
// level issues exactly one Find per target collection.
func (r *Resolver) Populate(ctx context.Context, docs []abstractions.Document, plan Plan) error {
	if len(plan) == 0 || len(docs) == 0 {
		return nil
	}

	frontier := make([]pending, 0, len(docs)*len(plan))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, path := range plan {
			frontier = append(frontier, pending{doc: doc, path: path})
		}
	}

	for level := 0; len(frontier) > 0; level++ {
		loaded, err := r.load(ctx, frontier)
		if err != nil {
			return err
		}

		next := make([]pending, 0)
		broken := 0
		for _, p := range frontier {
			targets, missing := substitute(p, loaded[p.path.Collection])
			broken += missing
			for _, target := range targets {
				for _, nested := range p.path.Nested {
					next = append(next, pending{doc: target, path: nested})
				}
			}
		}

		if broken > 0 {
			r.logger.Debug("Dangling references left unresolved",
				zap.Int("level", level),
				zap.Int("count", broken),
			)
		}
		frontier = next
	}
	return nil
}

// PopulateOne is Populate for a single document.
func (r *Resolver) PopulateOne(ctx context.Context, doc abstractions.Document, plan Plan) error {
	return r.Populate(ctx, []abstractions.Document{doc}, plan)
}

// load fetches every document referenced by the frontier, grouped by collection.
func (r *Resolver) load(ctx context.Context, frontier []pending) (map[string]map[string]abstractions.Document, error) {
	type request struct {
		ids       map[string]struct{}
		fields    map[string]struct{}
		allFields bool
	}
	requests := make(map[string]*request)

	for _, p := range frontier {
		req, ok := requests[p.path.Collection]
		if !ok {
			req = &request{ids: make(map[string]struct{}), fields: make(map[string]struct{})}
			requests[p.path.Collection] = req
		}
		if len(p.path.Select) == 0 {
			req.allFields = true
		}
		for _, f := range p.path.Select {
			req.fields[f] = struct{}{}
		}
		for _, id := range referencedIDs(p) {
			req.ids[id] = struct{}{}
		}
	}

	loaded := make(map[string]map[string]abstractions.Document, len(requests))
	for collection, req := range requests {
		byID := make(map[string]abstractions.Document, len(req.ids))
		loaded[collection] = byID
		if len(req.ids) == 0 {
			continue
		}

		criteria := abstractions.IDsIn(sortedKeys(req.ids))
		if !req.allFields {
			criteria.Fields = sortedKeys(req.fields)
		}

		found, err := r.store.Find(ctx, collection, criteria)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to populate %s", collection)
		}
		for _, doc := range found {
			byID[doc.ID()] = doc
		}
	}
	return loaded, nil
}

func referencedIDs(p pending) []string {
	raw := p.doc[p.path.Field]
	if p.path.Many {
		return abstractions.StringIDs(raw)
	}
	if id := singleID(raw); id != "" {
		return []string{id}
	}
	return nil
}

func singleID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		if doc, ok := abstractions.AsDocument(t); ok {
			return doc.ID()
		}
	}
	return ""
}

// substitute writes the loaded targets into p.doc and returns the targets that
// were placed, so nested paths can continue from them. It also returns how
// many references could not be resolved.
func substitute(p pending, byID map[string]abstractions.Document) ([]abstractions.Document, int) {
	raw, present := p.doc[p.path.Field]

	if !p.path.Many {
		if !present || raw == nil {
			return nil, 0
		}
		target, ok := byID[singleID(raw)]
		if !ok {
			p.doc[p.path.Field] = nil
			return nil, 1
		}
		clone := target.Clone()
		p.doc[p.path.Field] = clone
		return []abstractions.Document{clone}, 0
	}

	list := abstractions.AsList(raw)
	out := make([]any, len(list))
	placed := make([]abstractions.Document, 0, len(list))
	missing := 0
	for i, item := range list {
		target, ok := byID[singleID(item)]
		if !ok {
			out[i] = nil
			missing++
			continue
		}
		clone := target.Clone()
		out[i] = clone
		placed = append(placed, clone)
	}
	p.doc[p.path.Field] = out
	return placed, missing
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
