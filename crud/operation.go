package crud

import "fmt"

// Operation is the kind of operation a handler performs.
type Operation uint8

// All supported operation kinds.
const (
	Detail Operation = iota + 1
	Create
	Update
	Delete
	List
)

var operationNames = map[Operation]string{
	Detail: "detail",
	Create: "create",
	Update: "update",
	Delete: "delete",
	List:   "list",
}

// OperationFromString returns a valid Operation for the given string, or an
// error if the value is invalid.
func OperationFromString(val string) (Operation, error) {
	for op, name := range operationNames {
		if name == val {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unsupported operation '%s'", val)
}

// String returns the lower-case name of the operation.
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", uint8(o))
}

// Write reports whether the operation mutates the resource.
func (o Operation) Write() bool {
	return o == Create || o == Update || o == Delete
}
