package cmake

// VariableHandle is a variable bound to the Writer that declared it.
type VariableHandle struct {
	w   *Writer
	Var Var
}

// Variable returns a handle for the variable name.
func (w *Writer) Variable(name string) *VariableHandle {
	return &VariableHandle{w: w, Var: Var{Name: name}}
}

// Name returns the variable name.
func (h *VariableHandle) Name() string {
	return h.Var.Name
}

// Set emits set(name value).
func (h *VariableHandle) Set(value Value) Var {
	return h.w.Set(h.Var, value)
}

// ListHandle is a list variable bound to the Writer that declared it.
type ListHandle struct {
	w   *Writer
	Var Var
}

// List returns a handle for the list variable name.
func (w *Writer) List(name string) *ListHandle {
	return &ListHandle{w: w, Var: Var{Name: name}}
}

// Name returns the list variable name.
func (h *ListHandle) Name() string {
	return h.Var.Name
}

// Append emits list(APPEND name values...).
func (h *ListHandle) Append(values ...Value) {
	args := append([]Value{String("APPEND"), String(h.Var.Name)}, values...)
	h.w.Call("list", args...)
}
