package plugins

import (
	"github.com/trackvault/trackvault/bootstrap"
)

type LangGoCos struct {
}

// Name .
func (lg *LangGoCos) Name() string {
	return "Cos"
}

// New the cos client is request-scoped, nothing to allocate up front.
func (lg *LangGoCos) New() interface{} {
	return nil
}

// Health .
func (lg *LangGoCos) Health() {}

// Close .
func (lg *LangGoCos) Close() {}

// Flag .
func (lg *LangGoCos) Flag() bool {
	return bootstrap.NewConfig("").Cos.Enabled
}

func init() {
	p := &LangGoCos{}
	RegisteredPlugin(p)
}
