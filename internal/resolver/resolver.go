// Package resolver turns dynasty and poet names into backend ids,
// creating missing rows and falling back to static tables when creation fails.
package resolver

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/palemoky/poetry-importer/internal/classifier"
	"github.com/palemoky/poetry-importer/internal/logger"
	"github.com/palemoky/poetry-importer/internal/supabase"
)

// Outcome describes how an id was obtained.
type Outcome int

const (
	Found Outcome = iota
	Created
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Created:
		return "created"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

type dynastyRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type poetRecord struct {
	Name        string      `json:"name"`
	DynastyID   supabase.ID `json:"dynasty_id"`
	Description string      `json:"description"`
}

// Stats counts resolver outcomes over a run.
type Stats struct {
	DynastiesCreated int64
	PoetsCreated     int64
	Fallbacks        int64
	CachedDynasties  int
	CachedPoets      int
}

// Resolver resolves names with lookup-before-create. It is safe for concurrent use:
// calls for the same name share one in-flight resolution, and ids the backend
// confirmed are cached for the rest of the run. Fallback ids are never cached.
type Resolver struct {
	backend supabase.Backend

	group     singleflight.Group
	dynasties *idCache
	poets     *idCache

	dynastiesCreated atomic.Int64
	poetsCreated     atomic.Int64
	fallbacks        atomic.Int64
}

// New creates a resolver backed by b.
func New(b supabase.Backend) *Resolver {
	return &Resolver{
		backend:   b,
		dynasties: newIDCache(),
		poets:     newIDCache(),
	}
}

// Dynasty returns the id of the named dynasty. An empty name resolves to "".
func (r *Resolver) Dynasty(ctx context.Context, name string) supabase.ID {
	if name == "" {
		return ""
	}
	if id, ok := r.dynasties.get(name); ok {
		return id
	}

	v, _, _ := r.group.Do("dynasty:"+name, func() (any, error) {
		if id, ok := r.dynasties.get(name); ok {
			return id, nil
		}

		record := dynastyRecord{
			Name:        name,
			Description: name + "时期",
		}

		id, outcome := r.resolve(ctx, supabase.TableDynasties, name, record, DynastyFallback)
		switch outcome {
		case Created:
			r.dynastiesCreated.Add(1)
			fields := []zap.Field{zap.String("dynasty", name), zap.Stringer("id", id)}
			if classifier.KnownDynasty(name) {
				start, end := classifier.DynastyYears(name)
				fields = append(fields, zap.Int("start_year", start), zap.Int("end_year", end))
			}
			logger.Info("Created dynasty", fields...)
			r.dynasties.put(name, id)
		case Found:
			r.dynasties.put(name, id)
		case Fallback:
			logger.Warn("创建朝代失败, 使用默认ID", zap.String("dynasty", name), zap.Stringer("id", id))
		}
		return id, nil
	})
	return v.(supabase.ID)
}

// Poet returns the id of the named poet, creating it under dynastyID if needed.
// An empty name resolves to "".
func (r *Resolver) Poet(ctx context.Context, name string, dynastyID supabase.ID) supabase.ID {
	if name == "" {
		return ""
	}
	if id, ok := r.poets.get(name); ok {
		return id
	}

	v, _, _ := r.group.Do("poet:"+name, func() (any, error) {
		if id, ok := r.poets.get(name); ok {
			return id, nil
		}

		record := poetRecord{
			Name:        name,
			DynastyID:   dynastyID,
			Description: "著名诗人" + name,
		}

		id, outcome := r.resolve(ctx, supabase.TablePoets, name, record, PoetFallback)
		switch outcome {
		case Created:
			r.poetsCreated.Add(1)
			logger.Info("Created poet",
				zap.String("poet", name),
				zap.Stringer("id", id),
				zap.String("lifespan", classifier.PoetLifespan(name)),
			)
			r.poets.put(name, id)
		case Found:
			r.poets.put(name, id)
		case Fallback:
			logger.Warn("创建诗人失败, 使用默认ID", zap.String("poet", name), zap.Stringer("id", id))
		}
		return id, nil
	})
	return v.(supabase.ID)
}

// resolve runs lookup, create and fallback against one table.
func (r *Resolver) resolve(ctx context.Context, table, name string, record any, fallback func(string) supabase.ID) (supabase.ID, Outcome) {
	resp := supabase.Select(ctx, r.backend, table, "name", name)
	if resp.OK() {
		if id, ok := resp.FirstID(); ok {
			return id, Found
		}
	}

	resp = supabase.Insert(ctx, r.backend, table, record)
	if resp.Created() {
		if id, ok := resp.FirstID(); ok {
			return id, Created
		}
	}

	logger.Error("Failed to create row",
		zap.String("table", table),
		zap.String("name", name),
		zap.Int("status", resp.StatusCode),
		zap.String("body", resp.Text()),
	)
	r.fallbacks.Add(1)
	return fallback(name), Fallback
}

// Stats returns a snapshot of the resolver counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		DynastiesCreated: r.dynastiesCreated.Load(),
		PoetsCreated:     r.poetsCreated.Load(),
		Fallbacks:        r.fallbacks.Load(),
		CachedDynasties:  r.dynasties.len(),
		CachedPoets:      r.poets.len(),
	}
}

// ClearCache forgets every cached id.
func (r *Resolver) ClearCache() {
	r.dynasties.clear()
	r.poets.clear()
}
