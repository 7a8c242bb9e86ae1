package service

import (
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
)

func TestOpDependencyTableCoversAllOperations(t *testing.T) {
	for _, op := range entity.Operations {
		if _, ok := opDependencies[op]; !ok {
			t.Errorf("operation %s missing from dependency table", op)
		}
	}
	for op := range opDependencies {
		if !entity.ValidOperation(op) {
			t.Errorf("dependency table references unknown operation %s", op)
		}
	}
}

func TestOpDependencyGroupsReferenceValidOperations(t *testing.T) {
	for op, groups := range opDependencies {
		for _, group := range groups {
			if len(group) == 0 {
				t.Errorf("operation %s has an empty dependency group", op)
			}
			for _, dep := range group {
				if !entity.ValidOperation(dep) {
					t.Errorf("operation %s depends on unknown operation %s", op, dep)
				}
				if dep == op {
					t.Errorf("operation %s depends on itself", op)
				}
			}
		}
	}
}

// 触发表的每个后继，其依赖组里必须能找到触发源，否则拉起后永远开不了工
func TestOpTriggersConsistentWithDependencies(t *testing.T) {
	for source, targets := range opTriggers {
		for _, target := range targets {
			found := false
			for _, group := range opDependencies[target] {
				for _, dep := range group {
					if dep == source {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("trigger %s -> %s has no matching dependency group", source, target)
			}
		}
	}
}

func TestCuttingHasNoDependencies(t *testing.T) {
	if len(opDependencies[entity.OpCutting]) != 0 {
		t.Errorf("CUTTING should be a root operation, got deps %v", opDependencies[entity.OpCutting])
	}
}

func TestAssemblyAcceptsEitherFormingOrCutting(t *testing.T) {
	groups := opDependencies[entity.OpAssembly]
	if len(groups) != 1 {
		t.Fatalf("ASSEMBLY should have one dependency group, got %d", len(groups))
	}
	group := groups[0]
	hasForming, hasCutting := false, false
	for _, op := range group {
		if op == entity.OpForming {
			hasForming = true
		}
		if op == entity.OpCutting {
			hasCutting = true
		}
	}
	if !hasForming || !hasCutting {
		t.Errorf("ASSEMBLY group = %v, want FORMING and CUTTING as alternatives", group)
	}
}

func TestOpShort(t *testing.T) {
	if got := opShort(entity.OpCutting); got != "CUT" {
		t.Errorf("opShort(CUTTING) = %s, want CUT", got)
	}
	if got := opShort(entity.OpQC); got != "QC" {
		t.Errorf("opShort(QC) = %s, want QC", got)
	}
}
