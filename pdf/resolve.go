package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolve dereferences o. A nil object resolves to nil.
func resolve(ctx *model.Context, o types.Object) (types.Object, error) {
	if o == nil {
		return nil, nil
	}
	return ctx.Dereference(o)
}

func resolveDict(ctx *model.Context, o types.Object) (types.Dict, error) {
	obj, err := resolve(ctx, o)
	if err != nil || obj == nil {
		return nil, err
	}
	switch d := obj.(type) {
	case types.Dict:
		return d, nil
	case types.StreamDict:
		return d.Dict, nil
	case *types.StreamDict:
		return d.Dict, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %T", obj)
}

func resolveStream(ctx *model.Context, o types.Object) (*types.StreamDict, error) {
	obj, err := resolve(ctx, o)
	if err != nil || obj == nil {
		return nil, err
	}
	switch sd := obj.(type) {
	case types.StreamDict:
		return &sd, nil
	case *types.StreamDict:
		return sd, nil
	}
	return nil, fmt.Errorf("expected stream, got %T", obj)
}

func resolveInt(ctx *model.Context, o types.Object) (int, bool) {
	obj, err := resolve(ctx, o)
	if err != nil {
		return 0, false
	}
	switch v := obj.(type) {
	case types.Integer:
		return int(v), true
	case types.Float:
		return int(v), true
	}
	return 0, false
}

func resolveName(ctx *model.Context, o types.Object) (string, bool) {
	obj, err := resolve(ctx, o)
	if err != nil {
		return "", false
	}
	n, ok := obj.(types.Name)
	return string(n), ok
}

func resolveBool(ctx *model.Context, o types.Object) (bool, bool) {
	obj, err := resolve(ctx, o)
	if err != nil {
		return false, false
	}
	b, ok := obj.(types.Boolean)
	return bool(b), ok
}
