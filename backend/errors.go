package backend

import "fmt"

func fmtConcatError(a, b Shape) error {
	return fmt.Errorf("cannot concatenate shapes %v and %v along the leading dimension", []int(a), []int(b))
}
