package value

import "github.com/oxhq/xpathcore/internal/xdm"

// BooleanValue is an xs:boolean.
type BooleanValue bool

func NewBoolean(v bool) BooleanValue { return BooleanValue(v) }

func (v BooleanValue) Type() xdm.Type { return xdm.TypeBoolean }

func (v BooleanValue) StringValue() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BooleanValue) Bool() bool { return bool(v) }
