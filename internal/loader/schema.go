package loader

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// descriptionFile is the top level of a description file.
type descriptionFile struct {
	Packages     []*packageBlock  `hcl:"package,block"`
	Applications []*projectBlock  `hcl:"application,block"`
	Libraries    []*projectBlock  `hcl:"library,block"`
	Exporters    []*exporterBlock `hcl:"exporter,block"`
}

type packageBlock struct {
	Name        string   `hcl:"name,label"`
	Version     string   `hcl:"version"`
	Description string   `hcl:"description,optional"`
	Depends     []string `hcl:"depends,optional"`
}

type projectBlock struct {
	Sources        hcl.Expression `hcl:"sources,optional"`
	IncludeDirs    []string       `hcl:"include_dirs,optional"`
	CxxStandard    int            `hcl:"cxx_standard,optional"`
	ExecutableName string         `hcl:"executable_name,optional"`
	Flags          *flagsBlock    `hcl:"flags,block"`
}

// flagsBlock holds free-form warning toggles, e.g. w_all = true.
type flagsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type exporterBlock struct {
	Tag  string   `hcl:"tag,label"`
	Body hcl.Body `hcl:",remain"`
}

// globType is the value of glob(pattern) in a sources list.
var globType = cty.Object(map[string]cty.Type{"glob": cty.String})

var globFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "pattern", Type: cty.String},
	},
	Type: function.StaticReturnType(globType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.ObjectVal(map[string]cty.Value{"glob": args[0]}), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"glob": globFunc,
		},
	}
}
