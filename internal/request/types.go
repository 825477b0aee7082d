package request

// Request is the full set of user-supplied parameters driving one
// instantiation run.
type Request struct {
	// TargetDir is the parent of the generated project. Relative paths are
	// resolved against the current working directory; empty means the
	// working directory itself.
	TargetDir   string   `yaml:"targetDir,omitempty" json:"targetDir,omitempty"`
	ModelName   string   `yaml:"modelName" json:"modelName"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs      []VarDef `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs     []VarDef `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Parameters  []VarDef `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// VarDef declares one FMU variable.
type VarDef struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Start       interface{} `yaml:"start,omitempty" json:"start,omitempty"`
	Unit        string      `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// Variable type names accepted in VarDef.Type.
const (
	TypeReal    = "Real"
	TypeInteger = "Integer"
	TypeBoolean = "Boolean"
	TypeString  = "String"
)

// VariableCount returns the number of declared inputs, outputs and parameters.
func (r *Request) VariableCount() int {
	return len(r.Inputs) + len(r.Outputs) + len(r.Parameters)
}
