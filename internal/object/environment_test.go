package object

import "testing"

func TestDefineShadowsOuterScope(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Integer{Value: 1})

	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", &Integer{Value: 2})

	val, err := inner.Get("x")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Inspect())
	}
	if val.(*Integer).Value != 2 {
		t.Errorf("inner read expected=2, got=%d", val.(*Integer).Value)
	}

	val, err = outer.Get("x")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Inspect())
	}
	if val.(*Integer).Value != 1 {
		t.Errorf("outer binding changed. expected=1, got=%d", val.(*Integer).Value)
	}
}

func TestDefineReturnsPreviousOccupant(t *testing.T) {
	env := NewEnvironment()

	if previous := env.Define("x", &Integer{Value: 1}); previous != nil {
		t.Fatalf("first define returned a previous value: %v", previous)
	}

	previous := env.Define("x", &Integer{Value: 2})
	if previous == nil {
		t.Fatalf("redefine returned no previous value")
	}
	if previous.(*Integer).Value != 1 {
		t.Errorf("previous value expected=1, got=%d", previous.(*Integer).Value)
	}
}

func TestAssignWalksOutwards(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Integer{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	replaced, err := inner.Assign("x", &Integer{Value: 5})
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Inspect())
	}
	if replaced.(*Integer).Value != 1 {
		t.Errorf("replaced value expected=1, got=%d", replaced.(*Integer).Value)
	}

	val, _ := outer.Get("x")
	if val.(*Integer).Value != 5 {
		t.Errorf("outer binding not mutated. expected=5, got=%d", val.(*Integer).Value)
	}
}

func TestAssignUndefined(t *testing.T) {
	env := NewEnvironment()

	_, err := env.Assign("missing", &Integer{Value: 1})
	if err == nil {
		t.Fatalf("expected error, got none")
	}
	if err.Kind != UndefinedAssignmentTarget {
		t.Errorf("error kind expected=%s, got=%s", UndefinedAssignmentTarget, err.Kind)
	}
}

func TestGetErrors(t *testing.T) {
	env := NewEnvironment()
	env.Define("declared", nil)

	_, err := env.Get("declared")
	if err == nil || err.Kind != UninitialisedTarget {
		t.Errorf("uninitialised read: expected kind %s, got=%v", UninitialisedTarget, err)
	}

	_, err = env.Get("missing")
	if err == nil || err.Kind != UndefinedTarget {
		t.Errorf("undefined read: expected kind %s, got=%v", UndefinedTarget, err)
	}
}

func TestGlobalWalksToRoot(t *testing.T) {
	root := NewEnvironment()
	mid := NewEnclosedEnvironment(root)
	leaf := NewEnclosedEnvironment(mid)

	if leaf.Global() != root {
		t.Errorf("Global did not reach the parentless environment")
	}
}

func TestEnvironmentRoots(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("a", &RecordRef{Pointer: 1})
	outer.Define("n", &Integer{Value: 3})

	inner := NewEnclosedEnvironment(outer)
	inner.Define("b", &RecordRef{Pointer: 2})

	roots := inner.Roots()
	if len(roots) != 2 {
		t.Fatalf("wrong number of roots. expected=2, got=%d", len(roots))
	}

	seen := map[Pointer]bool{}
	for _, root := range roots {
		seen[root] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("roots missing expected pointers. got=%v", roots)
	}
}

func TestStackFrames(t *testing.T) {
	stack := NewStack()
	stack.Global().Define("g", &RecordRef{Pointer: 7})

	if stack.FramesCount() != 1 {
		t.Fatalf("fresh stack frame count expected=1, got=%d", stack.FramesCount())
	}

	frame := stack.PushFrame()
	if frame.Outer != stack.Global() {
		t.Errorf("call frame not parented at the global environment")
	}
	if stack.FramesCount() != 2 {
		t.Errorf("frame count expected=2, got=%d", stack.FramesCount())
	}

	// the global record is visible from the new frame
	val, err := frame.Get("g")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Inspect())
	}
	if val.(*RecordRef).Pointer != 7 {
		t.Errorf("global read through frame wrong. got=%d", val.(*RecordRef).Pointer)
	}

	stack.PopFrame()
	if stack.FramesCount() != 1 {
		t.Errorf("frame count after pop expected=1, got=%d", stack.FramesCount())
	}
}

func TestStackScopes(t *testing.T) {
	stack := NewStack()
	stack.Top().Define("x", &Integer{Value: 1})

	scope := stack.EnterScope()
	scope.Define("x", &Integer{Value: 2})

	val, _ := stack.Top().Get("x")
	if val.(*Integer).Value != 2 {
		t.Errorf("scoped read expected=2, got=%d", val.(*Integer).Value)
	}

	stack.ExitScope()
	val, _ = stack.Top().Get("x")
	if val.(*Integer).Value != 1 {
		t.Errorf("read after scope exit expected=1, got=%d", val.(*Integer).Value)
	}
}

func TestPopGlobalFramePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("popping the global frame did not panic")
		}
	}()

	NewStack().PopFrame()
}

func TestStackRootsSpanFrames(t *testing.T) {
	stack := NewStack()
	stack.Global().Define("a", &RecordRef{Pointer: 1})

	frame := stack.PushFrame()
	frame.Define("b", &RecordRef{Pointer: 2})

	roots := stack.Roots()
	seen := map[Pointer]bool{}
	for _, root := range roots {
		seen[root] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("roots missing expected pointers. got=%v", roots)
	}
}
