package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/obferrors"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// visitState marks a name's position during the level-assignment DFS.
type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

// buildBatches assigns each active name a level = 1 + max(level of its
// active dependencies), with level 0 for names with no active
// dependencies, then groups names by level in ascending order. Within a
// level, names keep their catalogOrder position. Dependencies on names
// outside active are pruned (soft dependencies, per the specification).
func buildBatches(catalogOrder []Name, deps map[Name][]Name, active map[Name]bool, stageLabel string) ([][]Name, error) {
	levels := make(map[Name]int)
	states := make(map[Name]visitState)

	var visit func(n Name) (int, error)
	visit = func(n Name) (int, error) {
		if lv, ok := levels[n]; ok {
			return lv, nil
		}
		if states[n] == visiting {
			return 0, &obferrors.ScheduleCycle{Stage: stageLabel, Transformers: []string{string(n)}}
		}
		states[n] = visiting
		maxDepLevel := -1
		for _, dep := range deps[n] {
			if !active[dep] {
				continue // soft dependency on an inactive transformer: dropped
			}
			lv, err := visit(dep)
			if err != nil {
				if cyc, ok := err.(*obferrors.ScheduleCycle); ok {
					cyc.Transformers = appendIfMissing(cyc.Transformers, string(n))
				}
				return 0, err
			}
			if lv > maxDepLevel {
				maxDepLevel = lv
			}
		}
		states[n] = done
		levels[n] = maxDepLevel + 1
		return levels[n], nil
	}

	for _, n := range catalogOrder {
		if !active[n] {
			continue
		}
		if _, err := visit(n); err != nil {
			return nil, err
		}
	}

	maxLevel := -1
	for _, n := range catalogOrder {
		if !active[n] {
			continue
		}
		if levels[n] > maxLevel {
			maxLevel = levels[n]
		}
	}
	if maxLevel < 0 {
		return nil, nil
	}

	batches := make([][]Name, maxLevel+1)
	for _, n := range catalogOrder {
		if !active[n] {
			continue
		}
		lv := levels[n]
		batches[lv] = append(batches[lv], n)
	}
	return batches, nil
}

func appendIfMissing(ss []string, s string) []string {
	for _, existing := range ss {
		if existing == s {
			return ss
		}
	}
	return append(ss, s)
}

// NodeBatch is one scheduled group of mutually-independent node
// transformers, with their visitors already fused into one.
type NodeBatch struct {
	Names   []Name
	Visitor visitor.Visitor
}

// ScheduleNodeStage normalizes the catalog to its active set for s,
// builds dependency-respecting batches, and fuses each batch's visitors.
// It returns the batches in run order together with the instantiated
// transformers (so the driver can call Prepare/Finalize on them).
func ScheduleNodeStage(reg *Registry, s stage.NodeStage) ([]NodeBatch, map[Name]NodeTransformer, error) {
	order := reg.NodeCatalogOrder()
	instances := make(map[Name]NodeTransformer, len(order))
	visitors := make(map[Name]visitor.Visitor, len(order))
	active := make(map[Name]bool, len(order))
	deps := make(map[Name][]Name, len(order))

	for _, name := range order {
		inst, ok := reg.NewNode(name)
		if !ok {
			continue
		}
		instances[name] = inst
		deps[name] = inst.Dependencies()
		if v, ok := inst.NodeVisitor(s); ok {
			active[name] = true
			visitors[name] = v
		}
	}

	rawBatches, err := buildBatches(order, deps, active, s.String())
	if err != nil {
		return nil, instances, err
	}

	batches := make([]NodeBatch, 0, len(rawBatches))
	for _, names := range rawBatches {
		if len(names) == 0 {
			continue
		}
		vs := make([]visitor.Visitor, 0, len(names))
		for _, n := range names {
			vs = append(vs, visitors[n])
		}
		batches = append(batches, NodeBatch{Names: names, Visitor: visitor.Fuse(vs)})
	}
	return batches, instances, nil
}

// CodeBatch is one scheduled group of mutually-independent code
// transformers, composed left-to-right into a single string function.
type CodeBatch struct {
	Names []Name
	Apply func(string) (string, error)
}

// ScheduleCodeStage mirrors ScheduleNodeStage for the string-to-string
// code stages: no traversal engine is involved, so a batch's functions
// are composed by straight left-to-right application instead of fusion.
func ScheduleCodeStage(reg *Registry, s stage.CodeStage) ([]CodeBatch, map[Name]CodeTransformer, error) {
	order := reg.CodeCatalogOrder()
	instances := make(map[Name]CodeTransformer, len(order))
	funcs := make(map[Name]func(string) (string, error), len(order))
	active := make(map[Name]bool, len(order))
	deps := make(map[Name][]Name, len(order))

	for _, name := range order {
		inst, ok := reg.NewCode(name)
		if !ok {
			continue
		}
		instances[name] = inst
		deps[name] = inst.Dependencies()
		if f, ok := inst.CodeFunc(s); ok {
			active[name] = true
			funcs[name] = f
		}
	}

	rawBatches, err := buildBatches(order, deps, active, s.String())
	if err != nil {
		return nil, instances, err
	}

	batches := make([]CodeBatch, 0, len(rawBatches))
	for _, names := range rawBatches {
		if len(names) == 0 {
			continue
		}
		batchFuncs := make([]func(string) (string, error), 0, len(names))
		for _, n := range names {
			batchFuncs = append(batchFuncs, funcs[n])
		}
		batches = append(batches, CodeBatch{Names: names, Apply: composeLeftToRight(batchFuncs)})
	}
	return batches, instances, nil
}

func composeLeftToRight(fns []func(string) (string, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		var err error
		for _, f := range fns {
			s, err = f(s)
			if err != nil {
				return "", err
			}
		}
		return s, nil
	}
}
