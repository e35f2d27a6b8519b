package schema

// Built-in scalar names.
const (
	String  = "String"
	Int     = "Int"
	Float   = "Float"
	Boolean = "Boolean"
	ID      = "ID"
)

// IsBuiltinScalar reports whether name is one of the five specified scalars.
func IsBuiltinScalar(name string) bool {
	switch name {
	case String, Int, Float, Boolean, ID:
		return true
	}
	return false
}
