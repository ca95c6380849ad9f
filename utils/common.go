package utils

const (
	NODETOL = 1.e-12
)

type EvalOp uint8

const (
	Equal EvalOp = iota
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
	NotEqual
)

// Eval applies op to the pair (a op b)
func (op EvalOp) Eval(a, b int) bool {
	switch op {
	case Equal:
		return a == b
	case Less:
		return a < b
	case Greater:
		return a > b
	case LessOrEqual:
		return a <= b
	case GreaterOrEqual:
		return a >= b
	case NotEqual:
		return a != b
	}
	panic("unknown EvalOp")
}

func (op EvalOp) String() string {
	switch op {
	case Equal:
		return "=="
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case NotEqual:
		return "!="
	}
	return "?"
}
