package source

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema describes the segment file format.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.ExpandedStruct = true
	reflector.Namer = func(t reflect.Type) string {
		return t.Name()
	}
	return reflector.Reflect(&File{})
}
