package mesh

// ElementType represents the finite element shapes a Mesh can carry

type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	// 2D elements
	Triangle
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line",
		"Triangle",
	}
	if e >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line:
		return 1
	case Triangle:
		return 2
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	default:
		return 0
	}
}

// GetNumFaces returns the number of facets bounding the element
func (e ElementType) GetNumFaces() int {
	switch e {
	case Line:
		return 2
	case Triangle:
		return 3
	default:
		return 0
	}
}

// GetElementFaces returns the faces of an element as vertex lists
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	v := vertices
	switch elemType {
	case Line:
		return [][]int{{v[0]}, {v[1]}}
	case Triangle:
		return [][]int{
			{v[0], v[1]}, // Face 0
			{v[1], v[2]}, // Face 1
			{v[2], v[0]}, // Face 2
		}
	default:
		return nil
	}
}
