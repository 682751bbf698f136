package object

// Stack is the call stack: an ordered sequence of environment-chain heads,
// one per active function invocation. The first frame is the permanent
// global environment.
//
// Block scopes are pushed and popped on the top frame's environment chain;
// only function calls push and pop frames.
type Stack struct {
	frames []*Environment
}

func NewStack() *Stack {
	return &Stack{frames: []*Environment{NewEnvironment()}}
}

func (s *Stack) Top() *Environment {
	return s.frames[len(s.frames)-1]
}

func (s *Stack) Global() *Environment {
	return s.frames[0]
}

// PushFrame creates a fresh frame parented at the global environment, not at
// the caller's lexical scope. The language has no closures over enclosing
// function locals.
func (s *Stack) PushFrame() *Environment {
	frame := NewEnclosedEnvironment(s.Global())
	s.frames = append(s.frames, frame)
	return frame
}

func (s *Stack) PopFrame() {
	if len(s.frames) <= 1 {
		panic("attempted to pop the global frame")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// EnterScope pushes a block scope onto the top frame's environment chain.
func (s *Stack) EnterScope() *Environment {
	scope := NewEnclosedEnvironment(s.Top())
	s.frames[len(s.frames)-1] = scope
	return scope
}

// ExitScope pops the top frame's innermost block scope, exposing its parent.
func (s *Stack) ExitScope() {
	top := s.Top()
	if top.Outer == nil {
		panic("attempted to exit the global scope")
	}
	s.frames[len(s.frames)-1] = top.Outer
}

func (s *Stack) FramesCount() int {
	return len(s.frames)
}

// Roots is the union of every frame's environment-chain roots.
func (s *Stack) Roots() []Pointer {
	var roots []Pointer
	for _, frame := range s.frames {
		roots = append(roots, frame.Roots()...)
	}
	return roots
}
